package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/studiowebux/apiconsole/internal/types"
)

func endpoint(owner, op string, method types.HTTPMethod, paths ...string) types.EndpointDescriptor {
	return types.EndpointDescriptor{Owner: owner, OperationName: op, Method: method, Paths: paths}
}

func sampleEndpoints() []types.EndpointDescriptor {
	return []types.EndpointDescriptor{
		endpoint("UserController", "listUsers", types.MethodGet, "/users"),
		endpoint("OrderController", "createOrder", types.MethodPost, "/orders"),
		endpoint("UserController", "createUser", types.MethodPost, "/users"),
		endpoint("HealthController", "ping", types.MethodGet, "/ping", "/status"),
		endpoint("OrderController", "deleteOrder", types.MethodDelete, "/orders/{id}"),
	}
}

type staticSource struct {
	items []types.EndpointDescriptor
	err   error
}

func (s staticSource) Catalog(context.Context) ([]types.EndpointDescriptor, error) {
	return s.items, s.err
}

func methodPtr(m types.HTTPMethod) *types.HTTPMethod { return &m }

func TestGroupingFirstSeenOrder(t *testing.T) {
	c := New()
	c.Replace(sampleEndpoints())

	idx := c.Index()
	owners := c.Owners()
	want := []string{"UserController", "OrderController", "HealthController"}
	if !reflect.DeepEqual(owners, want) {
		t.Errorf("Owners() = %v, want %v", owners, want)
	}

	users, ok := idx.Lookup("UserController")
	if !ok {
		t.Fatal("UserController group missing")
	}
	if users.Endpoints[0].OperationName != "listUsers" || users.Endpoints[1].OperationName != "createUser" {
		t.Errorf("group order not preserved: %+v", users.Endpoints)
	}
}

func TestGroupCountAndUnion(t *testing.T) {
	criteria := []Criteria{
		{},
		{SearchTerm: "order"},
		{SearchTerm: "USERS"},
		{Method: methodPtr(types.MethodPost)},
		{SearchTerm: "status", Method: methodPtr(types.MethodGet)},
		{SearchTerm: "nothing-matches"},
	}

	c := New()
	c.Replace(sampleEndpoints())

	for _, cr := range criteria {
		c.ApplyFilter(cr)
		filtered := c.Filtered()

		owners := map[string]bool{}
		for _, e := range filtered {
			owners[e.Owner] = true
		}
		if c.GroupCount() != len(owners) {
			t.Errorf("%+v: GroupCount() = %d, want %d", cr, c.GroupCount(), len(owners))
		}

		var union []types.EndpointDescriptor
		for _, g := range c.Index() {
			union = append(union, g.Endpoints...)
		}
		if len(union) != len(filtered) || c.Index().EndpointCount() != c.TotalFilteredCount() {
			t.Errorf("%+v: union has %d endpoints, filtered has %d", cr, len(union), len(filtered))
		}
		seen := map[string]int{}
		for _, e := range union {
			seen[e.Owner+"."+e.OperationName]++
		}
		for _, e := range filtered {
			if seen[e.Owner+"."+e.OperationName] != 1 {
				t.Errorf("%+v: %s.%s appears %d times", cr, e.Owner, e.OperationName, seen[e.Owner+"."+e.OperationName])
			}
		}
	}
}

func TestApplyFilterIdempotent(t *testing.T) {
	c := New()
	c.Replace(sampleEndpoints())

	cr := Criteria{SearchTerm: "user", Method: methodPtr(types.MethodPost)}
	c.ApplyFilter(cr)
	first := c.Index()
	c.ApplyFilter(cr)
	second := c.Index()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-applying criteria changed the index:\n%v\n%v", first, second)
	}
}

func TestFilterMatching(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     int
	}{
		{"empty matches all", Criteria{}, 5},
		{"operation name", Criteria{SearchTerm: "createorder"}, 1},
		{"owner", Criteria{SearchTerm: "health"}, 1},
		{"secondary path", Criteria{SearchTerm: "/status"}, 1},
		{"case insensitive", Criteria{SearchTerm: "ORDERS"}, 2},
		{"method only", Criteria{Method: methodPtr(types.MethodGet)}, 2},
		{"term and method", Criteria{SearchTerm: "users", Method: methodPtr(types.MethodGet)}, 1},
		{"whitespace term", Criteria{SearchTerm: "   "}, 5},
	}

	c := New()
	c.Replace(sampleEndpoints())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.ApplyFilter(tt.criteria)
			if got := c.TotalFilteredCount(); got != tt.want {
				t.Errorf("TotalFilteredCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReplaceDropsInvalid(t *testing.T) {
	items := append(sampleEndpoints(),
		endpoint("Broken", "noPaths", types.MethodGet),
		endpoint("Broken", "noMethod", "", "/x"),
	)
	c := New()
	c.Replace(items)

	if len(c.All()) != 5 {
		t.Errorf("All() has %d items, want 5", len(c.All()))
	}
	if _, ok := c.Index().Lookup("Broken"); ok {
		t.Error("invalid endpoints should not form a group")
	}
}

func TestReplaceKeepsCriteria(t *testing.T) {
	c := New()
	c.Replace(sampleEndpoints())
	c.ApplyFilter(Criteria{SearchTerm: "order"})

	c.Replace(sampleEndpoints()[:2])
	if c.TotalFilteredCount() != 1 {
		t.Errorf("TotalFilteredCount() = %d, want 1", c.TotalFilteredCount())
	}
}

func TestLoad(t *testing.T) {
	c := New()
	if err := c.Load(context.Background(), staticSource{items: sampleEndpoints()}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	err := c.Load(context.Background(), staticSource{err: errors.New("connection refused")})
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if len(c.All()) != 5 {
		t.Errorf("failed load should keep previous collection, have %d", len(c.All()))
	}
}

func TestFindOwner(t *testing.T) {
	c := New()
	c.Replace(sampleEndpoints())

	pos, ok := c.FindOwner("hlth")
	if !ok || pos != 2 {
		t.Errorf("FindOwner(hlth) = %d, %v; want 2, true", pos, ok)
	}
	if _, ok := c.FindOwner(""); ok {
		t.Error("empty query should not match")
	}
	if _, ok := c.FindOwner("zzz"); ok {
		t.Error("zzz should not match")
	}
}
