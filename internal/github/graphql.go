// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package github

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shurcooL/graphql"

	gateerrors "github.com/sirseerhq/sirseer-gate/internal/errors"
	"github.com/sirseerhq/sirseer-gate/internal/giterror"
	"github.com/sirseerhq/sirseer-gate/internal/logging"
)

// Compile-time interface satisfaction check.
var _ Client = (*GraphQLClient)(nil)

// GraphQLClient lists a pull request's files through the GraphQL API.
//
// GraphQL paginates with cursors, so the client remembers the cursor that
// starts each page it has seen. Page 1 resets that memory; any other page
// must directly follow the previous one.
type GraphQLClient struct {
	client    *graphql.Client
	ref       PullRequestRef
	inspector giterror.Inspector

	mu       sync.Mutex
	pageSize int
	cursors  map[int]*graphql.String
	lastPage int
}

// NewGraphQLClient creates a GraphQL client for ref against endpoint, e.g.
// "https://api.github.com/graphql".
func NewGraphQLClient(endpoint string, ref PullRequestRef, opts Options) *GraphQLClient {
	return &GraphQLClient{
		client:    graphql.NewClient(endpoint, newGraphQLHTTPClient(opts)),
		ref:       ref,
		inspector: giterror.NewInspector(),
	}
}

// filesQuery mirrors pullRequest.files on the GitHub schema.
type filesQuery struct {
	Repository struct {
		PullRequest struct {
			Files struct {
				Nodes []struct {
					Path graphql.String
				}
				PageInfo struct {
					HasNextPage graphql.Boolean
					EndCursor   graphql.String
				}
			} `graphql:"files(first: $first, after: $after)"`
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $repo)"`
}

// FetchPage implements Client.
func (c *GraphQLClient) FetchPage(ctx context.Context, page, pageSize int) ([]string, error) {
	if pageSize <= 0 || pageSize > MaxPageSize {
		return nil, fmt.Errorf("%w: page size %d outside 1..%d", gateerrors.ErrFetch, pageSize, MaxPageSize)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if page == 1 {
		c.pageSize = pageSize
		c.cursors = map[int]*graphql.String{1: nil}
		c.lastPage = 0
	}
	if c.cursors == nil {
		return nil, fmt.Errorf("%w: page %d requested before page 1", gateerrors.ErrFetch, page)
	}
	if pageSize != c.pageSize {
		return nil, fmt.Errorf("%w: page size changed from %d to %d mid-listing", gateerrors.ErrFetch, c.pageSize, pageSize)
	}
	if c.lastPage > 0 && page > c.lastPage {
		return []string{}, nil
	}

	after, ok := c.cursors[page]
	if !ok {
		return nil, fmt.Errorf("%w: page %d requested before page %d", gateerrors.ErrFetch, page, page-1)
	}

	var query filesQuery
	variables := map[string]interface{}{
		"owner":  graphql.String(c.ref.Owner),
		"repo":   graphql.String(c.ref.Repo),
		"number": graphql.Int(c.ref.Number),
		"first":  graphql.Int(pageSize),
		"after":  after,
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, giterror.Wrap(c.inspector,
			fmt.Errorf("querying files for %s (page %d): %w", c.ref, page, err))
	}

	files := query.Repository.PullRequest.Files
	names := make([]string, 0, len(files.Nodes))
	for _, node := range files.Nodes {
		names = append(names, string(node.Path))
	}

	if files.PageInfo.HasNextPage {
		c.cursors[page+1] = graphql.NewString(files.PageInfo.EndCursor)
	} else {
		c.lastPage = page
	}

	logging.FromContext(ctx).Debug("github graphql call",
		slog.String("pull_request", c.ref.String()),
		slog.Int("page", page),
		slog.Int("count", len(names)),
		slog.Bool("has_next_page", bool(files.PageInfo.HasNextPage)),
	)

	return names, nil
}
