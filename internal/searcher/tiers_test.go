package searcher

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dshills/codelogic-mcp/pkg/types"
)

// fakeStore matches patterns as case-insensitive substrings of symbol names
type fakeStore struct {
	symbols      []*types.Symbol
	rels         []*types.Relationship
	failPatterns map[string]error
	failAfter    int // Fail every pattern query after this many; 0 disables
	patterns     []string
	relCalls     int
	relIDs       []string
}

func (f *fakeStore) FindSymbolsByPattern(ctx context.Context, pattern string, limit int) ([]*types.Symbol, error) {
	f.patterns = append(f.patterns, pattern)
	if f.failAfter > 0 && len(f.patterns) > f.failAfter {
		return nil, errors.New("store closed")
	}
	if err, ok := f.failPatterns[strings.ToLower(pattern)]; ok {
		return nil, err
	}
	var out []*types.Symbol
	for _, s := range f.symbols {
		if strings.Contains(strings.ToLower(s.Name), strings.ToLower(pattern)) {
			out = append(out, s.Clone())
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) GetSymbol(ctx context.Context, id string) (*types.Symbol, error) {
	for _, s := range f.symbols {
		if s.ID == id {
			return s.Clone(), nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeStore) GetRelationshipsToSymbols(ctx context.Context, ids []string) ([]*types.Relationship, error) {
	f.relCalls++
	f.relIDs = append(f.relIDs, ids...)
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*types.Relationship
	for _, r := range f.rels {
		if want[r.ToSymbolID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func sym(id, name string, kind types.SymbolKind, path string) *types.Symbol {
	return &types.Symbol{ID: id, Name: name, Kind: kind, FilePath: path, Language: "go"}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		domain string
		want   []string
	}{
		{"payment processing", []string{"payment", "processing"}},
		{"  Payment\tService\n", []string{"payment", "service"}},
		{"", []string{}},
		{"   ", []string{}},
	}

	for _, tt := range tests {
		got := keywords(tt.domain)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") || len(got) != len(tt.want) {
			t.Errorf("keywords(%q) = %v, want %v", tt.domain, got, tt.want)
		}
	}
}

func TestKeywordTier(t *testing.T) {
	ctx := context.Background()
	w := DefaultWeights()
	store := &fakeStore{symbols: []*types.Symbol{
		sym("a", "PaymentService", types.KindClass, "src/pay.go"),
		sym("b", "processPayment", types.KindFunction, "src/pay.go"),
		sym("c", "Logger", types.KindClass, "src/log.go"),
	}}

	pool, err := keywordTier(ctx, store, []string{"payment", "service"}, w)
	if err != nil {
		t.Fatalf("keywordTier() error = %v", err)
	}

	// PaymentService matches both keywords; duplicates are left for fusion
	if len(pool) != 3 {
		t.Fatalf("len(pool) = %d, want 3", len(pool))
	}
	for _, c := range pool {
		if c.Score != 0.5 {
			t.Errorf("candidate %s score = %v, want 0.5", c.ID(), c.Score)
		}
		if c.Tag != "" {
			t.Errorf("candidate %s tag = %q, want empty", c.ID(), c.Tag)
		}
	}

	empty, err := keywordTier(ctx, store, nil, w)
	if err != nil || len(empty) != 0 {
		t.Errorf("keywordTier(no keywords) = %v, %v; want empty, nil", empty, err)
	}
}

func TestKeywordTier_StopsAtFirstFailure(t *testing.T) {
	store := &fakeStore{
		symbols:   []*types.Symbol{sym("a", "PaymentService", types.KindClass, "x.go")},
		failAfter: 1,
	}

	pool, err := keywordTier(context.Background(), store, []string{"payment", "service", "order"}, DefaultWeights())
	if err == nil {
		t.Fatal("expected error after store failure")
	}
	if len(pool) != 1 {
		t.Errorf("len(pool) = %d, want 1 hit gathered before the failure", len(pool))
	}
	if len(store.patterns) != 2 {
		t.Errorf("queries = %d, want 2 (no queries after the failure)", len(store.patterns))
	}
}

func TestPatternTier(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{symbols: []*types.Symbol{
		sym("svc", "PaymentService", types.KindClass, "a.go"),
		sym("svc-fn", "paymentServiceFactory", types.KindFunction, "a.go"),
		sym("repo", "PaymentRepository", types.KindStruct, "a.go"),
		sym("iface", "PaymentHandler", types.KindInterface, "a.go"),
		sym("proc", "processPayment", types.KindMethod, "a.go"),
		sym("proc-var", "processPaymentTimeout", types.KindConstant, "a.go"),
	}}

	pool, err := patternTier(ctx, store, []string{"payment"}, DefaultWeights())
	if err != nil {
		t.Fatalf("patternTier() error = %v", err)
	}

	got := make(map[string]*types.ScoredCandidate)
	for _, c := range pool {
		got[c.ID()] = c
	}

	if c := got["svc"]; c == nil || c.Score != 0.8 || c.Tag != "service" {
		t.Errorf("PaymentService = %+v, want score 0.8 tag service", c)
	}
	if c := got["repo"]; c == nil || c.Tag != "repository" {
		t.Errorf("PaymentRepository = %+v, want tag repository", c)
	}
	if c := got["proc"]; c == nil || c.Score != 0.7 || c.Tag != "" {
		t.Errorf("processPayment = %+v, want score 0.7 without tag", c)
	}
	for _, id := range []string{"svc-fn", "iface", "proc-var"} {
		if _, ok := got[id]; ok {
			t.Errorf("%s should be filtered by kind", id)
		}
	}

	wantQueries := len(classSuffixes) + len(methodPrefixes)
	if len(store.patterns) != wantQueries {
		t.Errorf("queries = %d, want %d", len(store.patterns), wantQueries)
	}
}

func TestPatternTier_NonASCIIKeyword(t *testing.T) {
	store := &fakeStore{symbols: []*types.Symbol{
		sym("proc", "processÜber", types.KindFunction, "a.go"),
		sym("svc", "überService", types.KindClass, "a.go"),
	}}

	pool, err := patternTier(context.Background(), store, []string{"über"}, DefaultWeights())
	if err != nil {
		t.Fatalf("patternTier() error = %v", err)
	}

	for _, p := range store.patterns {
		if !utf8.ValidString(p) {
			t.Errorf("pattern %q is not valid UTF-8", p)
		}
	}

	got := make(map[string]bool)
	for _, c := range pool {
		got[c.ID()] = true
	}
	if !got["proc"] || !got["svc"] {
		t.Errorf("pool = %v, want proc and svc", pool.ids())
	}
}

func TestPatternTier_SkipsFailingQuery(t *testing.T) {
	store := &fakeStore{
		symbols: []*types.Symbol{
			sym("svc", "PaymentService", types.KindClass, "a.go"),
			sym("proc", "processPayment", types.KindFunction, "a.go"),
		},
		failPatterns: map[string]error{"paymentservice": errors.New("malformed match")},
	}

	pool, err := patternTier(context.Background(), store, []string{"payment"}, DefaultWeights())
	if err == nil {
		t.Error("expected the failed query to be reported")
	}
	if len(pool) != 1 || pool[0].ID() != "proc" {
		t.Errorf("pool = %v, want only processPayment", pool.ids())
	}
}

func TestPathAdjustment(t *testing.T) {
	w := DefaultWeights()
	tests := []struct {
		path      string
		wantDelta float64
		wantTag   string
	}{
		{"src/services/PaymentService.ts", 0.25, LayerService},
		{"app/service/billing.go", 0.25, LayerService},
		{"app/domain/order.go", 0.20, LayerDomain},
		{"app/models/user.rb", 0.20, LayerDomain},
		{"app/entities/Invoice.cs", 0.20, LayerDomain},
		{"web/controllers/cart.go", 0.15, LayerController},
		{"web/api/v1/cart.go", 0.15, LayerController},
		{"db/repositories/orders.go", 0.10, LayerRepository},
		{"db/dao/orders.java", 0.10, LayerRepository},
		{"src/utils/Logger.ts", -0.30, LayerUtility},
		{"src/services/payment.test.ts", 0.25 - 0.50, LayerTest},
		{"src/utils/helpers_test.go", -0.30 - 0.50, LayerTest},
		{"SRC/SERVICES/X.GO", 0.25, LayerService},
		{"src/billing/invoice.go", 0, ""},
		{"app/services.go", 0, ""},
		{"src/servicesRegistry/x.go", 0, ""},
		// Only the first architectural rule applies
		{"src/services/domain/order.go", 0.25, LayerService},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			delta, tag := pathAdjustment(tt.path, w)
			if math.Abs(delta-tt.wantDelta) > 1e-9 {
				t.Errorf("delta = %v, want %v", delta, tt.wantDelta)
			}
			if tag != tt.wantTag {
				t.Errorf("tag = %q, want %q", tag, tt.wantTag)
			}
		})
	}
}

func TestPathTier_ClampsAndKeepsTag(t *testing.T) {
	w := DefaultWeights()
	high := types.NewCandidate(sym("a", "A", types.KindClass, "x/services/a.go"), 0.9)
	low := types.NewCandidate(sym("b", "B", types.KindClass, "x/test/b.go"), 0.2)
	tagged := types.NewCandidate(sym("c", "CService", types.KindClass, "x/billing/c.go"), 0.8)
	tagged.Tag = "service"

	pathTier(Pool{high, low, tagged}, w)

	if high.Score != 1 {
		t.Errorf("high score = %v, want clamped 1", high.Score)
	}
	if low.Score != 0 || low.Tag != LayerTest {
		t.Errorf("low = %v %q, want 0 test", low.Score, low.Tag)
	}
	if tagged.Score != 0.8 || tagged.Tag != "service" {
		t.Errorf("unmatched path changed candidate: %v %q", tagged.Score, tagged.Tag)
	}
}

func TestCentralityTier(t *testing.T) {
	ctx := context.Background()
	w := DefaultWeights()
	store := &fakeStore{rels: []*types.Relationship{
		{ID: "r1", FromSymbolID: "x", ToSymbolID: "hub"},
		{ID: "r2", FromSymbolID: "y", ToSymbolID: "hub"},
		{ID: "r3", FromSymbolID: "z", ToSymbolID: "hub"},
		{ID: "r4", FromSymbolID: "x", ToSymbolID: "leaf"},
	}}

	hub := types.NewCandidate(sym("hub", "Hub", types.KindClass, "a.go"), 0.5)
	leaf := types.NewCandidate(sym("leaf", "Leaf", types.KindClass, "a.go"), 0.5)
	lone := types.NewCandidate(sym("lone", "Lone", types.KindClass, "a.go"), 0.5)

	if err := centralityTier(ctx, store, Pool{hub, leaf, lone}, w); err != nil {
		t.Fatalf("centralityTier() error = %v", err)
	}

	if store.relCalls != 1 {
		t.Errorf("relationship lookups = %d, want exactly 1", store.relCalls)
	}
	if len(store.relIDs) != 3 {
		t.Errorf("looked up %d ids, want 3", len(store.relIDs))
	}

	wantHub := 0.5 + math.Log(3)*0.05
	if math.Abs(hub.Score-wantHub) > 1e-9 {
		t.Errorf("hub score = %v, want %v", hub.Score, wantHub)
	}
	// ln(1) = 0
	if leaf.Score != 0.5 || lone.Score != 0.5 {
		t.Errorf("leaf/lone = %v/%v, want 0.5/0.5", leaf.Score, lone.Score)
	}
	if hub.Score < leaf.Score {
		t.Error("more incoming references must never lower the score")
	}
}

func TestCentralityTier_EmptyPoolSkipsLookup(t *testing.T) {
	store := &fakeStore{}
	if err := centralityTier(context.Background(), store, nil, DefaultWeights()); err != nil {
		t.Fatal(err)
	}
	if store.relCalls != 0 {
		t.Errorf("relationship lookups = %d, want 0", store.relCalls)
	}
}

func TestKeywordOverlap(t *testing.T) {
	w := DefaultWeights()
	tests := []struct {
		name string
		sym  *types.Symbol
		kws  []string
		want float64
	}{
		{"name only", &types.Symbol{Name: "PaymentGateway"}, []string{"payment"}, 0.5},
		{"case insensitive", &types.Symbol{Name: "PAYMENT"}, []string{"payment"}, 0.5},
		{"path and doc", &types.Symbol{Name: "Run", FilePath: "billing/run.go", DocComment: "Billing entry point"}, []string{"billing"}, 0.4},
		{"signature", &types.Symbol{Name: "Run", Signature: "Run(order Order)"}, []string{"order"}, 0.1},
		{"capped", &types.Symbol{Name: "PaymentService", FilePath: "services/payment"}, []string{"payment", "service"}, 1.0},
		{"no match", &types.Symbol{Name: "Logger"}, []string{"payment"}, 0},
		{"nil symbol", nil, []string{"payment"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keywordOverlap(tt.sym, tt.kws, w)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("keywordOverlap() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFuse(t *testing.T) {
	w := DefaultWeights()
	first := types.NewCandidate(sym("b", "OrderService", types.KindClass, "a.go"), 0.6)
	dup := types.NewCandidate(sym("b", "OrderService", types.KindClass, "a.go"), 0.9)
	other := types.NewCandidate(sym("a", "Logger", types.KindClass, "a.go"), 0.6)
	tieA := types.NewCandidate(sym("d", "Cache", types.KindClass, "a.go"), 0.2)
	tieB := types.NewCandidate(sym("c", "Clock", types.KindClass, "a.go"), 0.2)

	fused := fuse(Pool{first, other, tieA, dup, tieB}, []string{"order"}, w)

	if len(fused) != 4 {
		t.Fatalf("len = %d, want 4 after dedup", len(fused))
	}
	// First-seen wins: 0.6*0.7 + 0.5*0.3
	if fused[0].ID() != "b" || math.Abs(fused[0].Score-0.57) > 1e-9 {
		t.Errorf("top = %s %.3f, want b 0.570", fused[0].ID(), fused[0].Score)
	}
	if fused[1].ID() != "a" {
		t.Errorf("second = %s, want a", fused[1].ID())
	}
	// Equal scores land in id order
	if fused[2].ID() != "c" || fused[3].ID() != "d" {
		t.Errorf("tie order = %s,%s; want c,d", fused[2].ID(), fused[3].ID())
	}
	for _, c := range fused {
		if c.Score < 0 || c.Score > 1 {
			t.Errorf("score %v out of range", c.Score)
		}
	}
}

func TestPoolHelpers(t *testing.T) {
	a := types.NewCandidate(sym("a", "A", types.KindClass, "x"), 0.1)
	b := types.NewCandidate(sym("b", "B", types.KindClass, "x"), 0.9)
	a2 := types.NewCandidate(sym("a", "A", types.KindClass, "x"), 0.8)

	deduped := dedupFirstSeen(Pool{a, b, a2})
	if len(deduped) != 2 || deduped[0] != a {
		t.Errorf("dedupFirstSeen kept %v", deduped.ids())
	}

	filtered := filterMinScore(Pool{a, b}, 0.5)
	if len(filtered) != 1 || filtered[0] != b {
		t.Errorf("filterMinScore kept %v", filtered.ids())
	}
	if got := filterMinScore(Pool{a, b}, 0); len(got) != 2 {
		t.Errorf("zero min score dropped candidates: %v", got.ids())
	}

	p := Pool{a, b}
	sortByScore(p)
	if p[0] != b {
		t.Errorf("sortByScore order = %v", p.ids())
	}
}

func TestWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Weights)
	}{
		{"boost above one", func(w *Weights) { w.ServicePathBoost = 1.5 }},
		{"penalty below minus one", func(w *Weights) { w.TestPathPenalty = -2 }},
		{"zero over-fetch", func(w *Weights) { w.OverFetchFactor = 0 }},
		{"zero graph cap", func(w *Weights) { w.MaxGraphCandidates = 0 }},
		{"negative keyword limit", func(w *Weights) { w.MaxKeywordResults = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := DefaultWeights()
			tt.mutate(&w)
			if err := w.Validate(); !errors.Is(err, ErrInvalidWeights) {
				t.Errorf("Validate() = %v, want ErrInvalidWeights", err)
			}
		})
	}
}

func TestOverFetch(t *testing.T) {
	tests := []struct {
		maxResults, factor, want int
	}{
		{50, 3, 150},
		{0, 3, 0},
		{1, 0, 0},
		{math.MaxInt / 2, 3, math.MaxInt},
		{1 << 62, 4, math.MaxInt},
	}
	for _, tt := range tests {
		if got := overFetch(tt.maxResults, tt.factor); got != tt.want {
			t.Errorf("overFetch(%d, %d) = %d, want %d", tt.maxResults, tt.factor, got, tt.want)
		}
	}
}
