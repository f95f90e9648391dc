package stream_test

import (
	"errors"
	"testing"

	perr "github.com/next-trace/scg-product-events/contract/errors"
	"github.com/next-trace/scg-product-events/contract/stream"
)

func TestParse(t *testing.T) {
	for _, name := range []string{"products", "recommendations", "reviews"} {
		b, err := stream.Parse(name)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}

		if b.String() != name {
			t.Fatalf("parse %s: got %s", name, b)
		}
	}

	if _, err := stream.Parse("prodcuts"); !errors.Is(err, perr.ErrInvalidBinding) {
		t.Fatalf("want ErrInvalidBinding, got %v", err)
	}
}

func TestBindings_FixedOrder(t *testing.T) {
	got := stream.Bindings()
	want := []stream.Binding{stream.Products, stream.Recommendations, stream.Reviews}

	if len(got) != len(want) {
		t.Fatalf("bindings: %v", got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bindings[%d]: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestValid(t *testing.T) {
	if !stream.Products.Valid() {
		t.Fatalf("products must be valid")
	}

	if stream.Binding("").Valid() || stream.Binding("orders").Valid() {
		t.Fatalf("unknown bindings must be invalid")
	}
}
