package registry

import (
	"strings"
	"testing"

	"github.com/vovakirdan/beatshot/internal/core"
)

type stubGame struct {
	id  string
	env Env
}

func (g *stubGame) ID() string                                    { return g.id }
func (g *stubGame) Title() string                                 { return strings.ToUpper(g.id) }
func (g *stubGame) Reset(core.RuntimeConfig) error                { return nil }
func (g *stubGame) Step(core.InputFrame, float64) core.StepResult { return core.StepResult{} }
func (g *stubGame) Render(*core.Screen)                           {}
func (g *stubGame) State() core.GameState                         { return core.GameState{} }
func (g *stubGame) Result() core.RunStats                         { return core.RunStats{} }
func (g *stubGame) Close()                                        {}

func stubFactory(id string) Factory {
	return func(env Env) Game { return &stubGame{id: id, env: env} }
}

func TestRegisterAndCreate(t *testing.T) {
	Register("test-create", 100, stubFactory("test-create"))

	if !Exists("test-create") {
		t.Fatal("Exists() = false, expected true after Register")
	}

	g, err := Create("test-create", Env{Assets: "assets"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if g.ID() != "test-create" {
		t.Errorf("ID() = %q, expected test-create", g.ID())
	}
	if env := g.(*stubGame).env; env.Assets != "assets" {
		t.Errorf("factory env Assets = %q, expected assets", env.Assets)
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create("no-such-level", Env{}); err == nil {
		t.Error("Create() of unknown level should fail")
	}
	if Exists("no-such-level") {
		t.Error("Exists() = true for unknown level")
	}
}

func TestListOrder(t *testing.T) {
	Register("test-order-b", 201, stubFactory("test-order-b"))
	Register("test-order-a", 201, stubFactory("test-order-a"))
	Register("test-order-c", 200, stubFactory("test-order-c"))

	var got []string
	for _, info := range List() {
		if strings.HasPrefix(info.ID, "test-order-") {
			got = append(got, info.ID)
		}
	}

	expected := []string{"test-order-c", "test-order-a", "test-order-b"}
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Errorf("List() order = %v, expected %v", got, expected)
	}

	for _, info := range List() {
		if info.ID == "test-order-c" && info.Title != "TEST-ORDER-C" {
			t.Errorf("Title = %q, expected TEST-ORDER-C", info.Title)
		}
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("test-dup", 300, stubFactory("test-dup"))

	defer func() {
		if recover() == nil {
			t.Error("Register() of duplicate ID should panic")
		}
	}()
	Register("test-dup", 300, stubFactory("test-dup"))
}
