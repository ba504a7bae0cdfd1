package factory

import (
	"path/filepath"
	"testing"

	"github.com/ptflow/runtime/internal/modules/selector"
	"github.com/ptflow/runtime/internal/modules/sink"
	"github.com/ptflow/runtime/internal/modules/source"
	"github.com/ptflow/runtime/pkg/analysis"
)

func TestCreateSourceModule(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *analysis.ModuleConfig
		wantStub bool
		wantNil  bool
		wantErr  bool
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantNil: true,
		},
		{
			name: "synthetic",
			cfg: &analysis.ModuleConfig{
				Type:   "synthetic",
				Config: map[string]interface{}{"events": 3, "candidates": 2},
			},
		},
		{
			name:     "unknown type falls back to stub",
			cfg:      &analysis.ModuleConfig{Type: "kafka"},
			wantStub: true,
		},
		{
			name: "invalid config propagates error",
			cfg: &analysis.ModuleConfig{
				Type:   "jsonl",
				Config: map[string]interface{}{"path": ""},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := CreateSourceModule(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tt.wantNil {
				if m != nil {
					t.Fatalf("expected nil module, got %T", m)
				}
				return
			}
			if _, isStub := m.(*source.StubModule); isStub != tt.wantStub {
				t.Errorf("stub = %v, want %v (got %T)", isStub, tt.wantStub, m)
			}
		})
	}
}

func TestCreateSelectorModules(t *testing.T) {
	cfgs := []analysis.ModuleConfig{
		{Type: "loop"},
		{Type: "columns", Config: map[string]interface{}{"threshold": 50.0}},
		{Type: "frame"},
		{Type: "expr"},
		{Type: "script"},
		{Type: "mystery"},
	}

	modules, err := CreateSelectorModules(cfgs)
	if err != nil {
		t.Fatal(err)
	}
	if len(modules) != len(cfgs) {
		t.Fatalf("got %d modules, want %d", len(modules), len(cfgs))
	}
	if _, ok := modules[5].(*selector.StubModule); !ok {
		t.Errorf("unknown type should resolve to stub, got %T", modules[5])
	}
}

func TestCreateSelectorModulesEmpty(t *testing.T) {
	modules, err := CreateSelectorModules(nil)
	if err != nil {
		t.Fatal(err)
	}
	if modules != nil {
		t.Errorf("expected nil, got %v", modules)
	}
}

func TestCreateSelectorModulesInvalidConfig(t *testing.T) {
	_, err := CreateSelectorModules([]analysis.ModuleConfig{
		{Type: "expr", Config: map[string]interface{}{"cut": "e >"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestCreateSinkModule(t *testing.T) {
	pipeline := &analysis.Pipeline{ID: "test-pipe"}

	m, err := CreateSinkModule(&analysis.ModuleConfig{
		Type:   "histogram",
		Config: map[string]interface{}{"render": "none"},
	}, pipeline)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.(*sink.HistogramModule); !ok {
		t.Errorf("got %T, want *sink.HistogramModule", m)
	}

	stub, err := CreateSinkModule(&analysis.ModuleConfig{Type: "s3"}, pipeline)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := stub.(*sink.StubModule); !ok {
		t.Errorf("unknown type should resolve to stub, got %T", stub)
	}

	nilModule, err := CreateSinkModule(nil, pipeline)
	if err != nil || nilModule != nil {
		t.Errorf("nil config: got %v, %v", nilModule, err)
	}
}

func TestCreateSinkModuleTemplatePath(t *testing.T) {
	pipeline := &analysis.Pipeline{ID: "pt-demo", Name: "Demo"}
	path := filepath.Join(t.TempDir(), "{{pipeline.id}}.csv")

	m, err := CreateSinkModule(&analysis.ModuleConfig{
		Type:   "csv",
		Config: map[string]interface{}{"path": path},
	}, pipeline)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil {
		t.Fatal("expected module")
	}
}
