package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"forumcore/pkg/apperror"
	"github.com/google/uuid"
)

// HTTPProvider talks to the identity service's internal REST API. Failures
// propagate to the caller wrapped as dependency errors; there are no retries
// here.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	if err := p.get(ctx, "/internal/users/"+id.String(), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *HTTPProvider) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]User, error) {
	out := make(map[uuid.UUID]User)
	if len(ids) == 0 {
		return out, nil
	}
	if err := p.get(ctx, "/internal/users", idsQuery(ids), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *HTTPProvider) GetUserAccessLevel(ctx context.Context, id uuid.UUID) (string, error) {
	levels, err := p.GetUsersAccessLevel(ctx, []uuid.UUID{id})
	if err != nil {
		return "", err
	}
	return levels[id], nil
}

func (p *HTTPProvider) GetUsersAccessLevel(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string)
	if len(ids) == 0 {
		return out, nil
	}
	if err := p.get(ctx, "/internal/users/access-levels", idsQuery(ids), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *HTTPProvider) GetUsersXPAndRank(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]XPRank, error) {
	out := make(map[uuid.UUID]XPRank)
	if len(ids) == 0 {
		return out, nil
	}
	if err := p.get(ctx, "/internal/users/xp", idsQuery(ids), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *HTTPProvider) get(ctx context.Context, path string, query url.Values, dest any) error {
	endpoint := p.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider unreachable: %w", apperror.ErrDependency)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity provider returned %d: %w", resp.StatusCode, apperror.ErrDependency)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("identity provider response invalid: %w", apperror.ErrDependency)
	}
	return nil
}

func idsQuery(ids []uuid.UUID) url.Values {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return url.Values{"ids": {strings.Join(strs, ",")}}
}
