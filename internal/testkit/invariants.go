// Package testkit holds reusable invariant checks shared by tests and
// the check command.
package testkit

import (
	"fmt"

	"phlox/internal/types"
)

// CheckRegistryInvariants walks every named type in the registry and
// verifies the structural properties the rest of the system leans on:
// 1) OriginalDefinition is idempotent and lands on a definition
// 2) arity is preserved across construction and rebasing
// 3) type parameters always come from the origin
// 4) constructed forms carry exactly arity arguments
// 5) re-constructing a cached instantiation yields the same id
func CheckRegistryInvariants(r *types.Registry) error {
	if r == nil {
		return fmt.Errorf("nil registry")
	}
	for i := 1; i < r.Len(); i++ {
		id := types.NamedID(i)
		origin := r.OriginalDefinition(id)
		if !origin.IsValid() {
			return fmt.Errorf("%s: no original definition", r.NameOf(id))
		}
		if again := r.OriginalDefinition(origin); again != origin {
			return fmt.Errorf("%s: OriginalDefinition not idempotent: %d then %d",
				r.NameOf(id), origin, again)
		}
		if !r.Get(origin).IsDefinition() {
			return fmt.Errorf("%s: origin %d is not a definition", r.NameOf(id), origin)
		}

		arity := r.Arity(id)
		if got := r.Arity(origin); got != arity {
			return fmt.Errorf("%s: arity %d differs from origin's %d", r.NameOf(id), arity, got)
		}
		params := r.TypeParameters(id)
		if len(params) != arity {
			return fmt.Errorf("%s: %d type parameters for arity %d", r.NameOf(id), len(params), arity)
		}
		originParams := r.TypeParameters(origin)
		for j, p := range params {
			if p != originParams[j] {
				return fmt.Errorf("%s: type parameter %d not shared with origin", r.NameOf(id), j)
			}
		}

		if r.Get(id).Prov != types.ProvConstructed {
			continue
		}
		def := r.ConstructedFrom(id)
		if !def.IsValid() {
			return fmt.Errorf("%s: constructed record without a definition", r.NameOf(id))
		}
		args := r.TypeArguments(id)
		if len(args) != arity {
			return fmt.Errorf("%s: %d type arguments for arity %d", r.NameOf(id), len(args), arity)
		}
		if r.IsUnbound(id) {
			continue
		}
		same, err := r.Construct(def, args)
		if err != nil {
			return fmt.Errorf("%s: re-construct failed: %w", r.NameOf(id), err)
		}
		if same != id {
			return fmt.Errorf("%s: re-construct produced %d instead of %d", r.NameOf(id), same, id)
		}
	}
	return nil
}
