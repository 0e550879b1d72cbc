package ncaa

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vsnandy/sportsproxy/directory"
	"github.com/vsnandy/sportsproxy/proxy"
	"github.com/vsnandy/sportsproxy/store"
)

var testNow = time.Date(2024, time.March, 25, 12, 0, 0, 0, time.UTC)

type fakeGetter struct {
	doc  string
	err  error
	urls []string
}

func (g *fakeGetter) GetJSON(_ context.Context, rawURL string) ([]byte, error) {
	g.urls = append(g.urls, rawURL)
	if g.err != nil {
		return nil, g.err
	}
	return []byte(g.doc), nil
}

type fakeDraft struct {
	picks map[string][]DraftPick
	calls int
	err   error
}

func (d *fakeDraft) PutPicks(_ context.Context, picks []DraftPick) error {
	d.calls++
	if d.err != nil {
		return d.err
	}

	if d.picks == nil {
		d.picks = make(map[string][]DraftPick)
	}

	for _, pick := range picks {
		for _, existing := range d.picks[pick.LeagueID] {
			if existing.PickNumber == pick.PickNumber {
				return errors.Wrap(store.ErrConditionFailed, "transact write on draft")
			}
		}
	}

	for _, pick := range picks {
		d.picks[pick.LeagueID] = append(d.picks[pick.LeagueID], pick)
	}
	return nil
}

func (d *fakeDraft) Picks(_ context.Context, leagueID string) ([]DraftPick, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.picks[leagueID], nil
}

type fakeMembers struct {
	members []directory.Member
	groups  []string
}

func (m *fakeMembers) Members(_ context.Context, group string) ([]directory.Member, error) {
	m.groups = append(m.groups, group)
	return m.members, nil
}

type testAdapter struct {
	*Adapter
	getter  *fakeGetter
	draft   *fakeDraft
	members *fakeMembers
	router  *proxy.Router
}

func newTestAdapter(t *testing.T, doc string) *testAdapter {
	t.Helper()

	ta := &testAdapter{
		getter:  &fakeGetter{doc: doc},
		draft:   &fakeDraft{},
		members: &fakeMembers{},
	}
	ta.Adapter = &Adapter{
		Getter:  ta.getter,
		Draft:   ta.draft,
		Members: ta.members,
		Now:     func() time.Time { return testNow },
	}
	ta.router = proxy.NewRouter("")
	ta.Register(ta.router)
	require.True(t, ta.router.Valid())
	return ta
}

func (ta *testAdapter) route(t *testing.T, method string, path string, query map[string]string, body string) events.APIGatewayProxyResponse {
	t.Helper()

	request := events.APIGatewayV2HTTPRequest{
		RawPath:               path,
		QueryStringParameters: query,
		Body:                  body,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: method, Path: path},
		},
	}

	response, err := ta.router.Route(context.Background(), request)
	require.NoError(t, err)
	return response
}

func contestsDoc(t *testing.T) string {
	t.Helper()

	content, err := os.ReadFile("testdata/contests.json")
	require.NoError(t, err)
	return string(content)
}

func errorMessage(t *testing.T, response events.APIGatewayProxyResponse) string {
	t.Helper()

	var body proxy.ErrorBody
	require.NoError(t, json.Unmarshal([]byte(response.Body), &body))
	return body.Message
}
