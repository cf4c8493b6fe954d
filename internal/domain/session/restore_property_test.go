package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genIdentity() gopter.Gen {
	return gopter.CombineGens(
		gen.Identifier(),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.Identifier(),
		gen.OneConstOf(RoleFarmer, RoleAdmin, RoleBuyer),
		gen.OneConstOf(StatusActive, StatusPending, StatusSuspended),
		gen.AlphaString(),
		gen.Float64Range(0, 1e6),
		gen.IntRange(0, 500),
		gen.Float64Range(0, 1e6),
		gen.IntRange(0, 500),
	).Map(func(v []interface{}) Identity {
		return Identity{
			ID:           v[0].(string),
			Name:         v[1].(string),
			Email:        v[2].(string) + "@market.test",
			Role:         v[3].(Role),
			Status:       v[4].(AccountStatus),
			JoinDate:     v[5].(string),
			SalesTotal:   v[6].(float64),
			ProductCount: float64(v[7].(int)),
			SpendTotal:   v[8].(float64),
			OrderCount:   float64(v[9].(int)),
		}
	})
}

// Property: any valid persisted identity is restored unchanged.
func TestRestore_ValidIdentitiesRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("restore yields the persisted identity", prop.ForAll(
		func(identity Identity, token string) bool {
			slots := newFakeSlots()
			raw, err := json.Marshal(identity)
			if err != nil {
				return false
			}
			slots.data[SlotUser] = string(raw)
			slots.data[SlotToken] = token

			store := newTestStore(slots, &fakeAuth{})
			if err := store.Restore(context.Background()); err != nil {
				return false
			}
			sess := store.Current()
			return sess != nil && sess.Identity == identity && sess.Token == token && slots.len() == 2
		},
		genIdentity(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

// Property: structurally invalid payloads leave the store anonymous and the
// storage empty.
func TestRestore_InvalidPayloadsPurge(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("garbage identity is purged", prop.ForAll(
		func(payload string) bool {
			slots := newFakeSlots()
			slots.data[SlotUser] = payload
			slots.data[SlotToken] = "t1"

			store := newTestStore(slots, &fakeAuth{})
			_ = store.Restore(context.Background())
			return !store.IsAuthenticated() && slots.len() == 0
		},
		gen.AnyString(),
	))

	properties.Property("identity missing one required field is purged", prop.ForAll(
		func(identity Identity, drop int) bool {
			raw, _ := json.Marshal(identity)
			var obj map[string]any
			_ = json.Unmarshal(raw, &obj)
			fields := []string{"id", "name", "email", "role", "status", "joinDate", "sales", "products", "spent", "orders"}
			delete(obj, fields[drop])
			raw, _ = json.Marshal(obj)

			slots := newFakeSlots()
			slots.data[SlotUser] = string(raw)
			slots.data[SlotToken] = "t1"

			store := newTestStore(slots, &fakeAuth{})
			_ = store.Restore(context.Background())
			return !store.IsAuthenticated() && slots.len() == 0
		},
		genIdentity(),
		gen.IntRange(0, 9),
	))

	properties.TestingRun(t)
}
