package resource

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes bulk amount resources (measured in kg) from
// discrete item resources (counted in units).
type Kind int

const (
	kindInvalid Kind = iota
	KindAmount
	KindItem
)

func (k Kind) String() string {
	switch k {
	case KindAmount:
		return "amount"
	case KindItem:
		return "item"
	default:
		return "invalid"
	}
}

// ResourceID identifies a resource in stock or cargo.
// The zero value is not a valid identifier.
type ResourceID struct {
	kind Kind
	id   uint32
}

// Amount returns the identifier of a bulk resource measured by mass
func Amount(id uint32) ResourceID {
	return ResourceID{kind: KindAmount, id: id}
}

// Item returns the identifier of a discrete resource counted in units
func Item(id uint32) ResourceID {
	return ResourceID{kind: KindItem, id: id}
}

// Kind returns whether the id names an amount or an item resource
func (r ResourceID) Kind() Kind { return r.kind }

// Value returns the numeric id within its kind
func (r ResourceID) Value() uint32 { return r.id }

// IsValid reports whether the identifier was built with Amount or Item
func (r ResourceID) IsValid() bool {
	return r.kind == KindAmount || r.kind == KindItem
}

// IsItem reports whether the resource is counted in units
func (r ResourceID) IsItem() bool { return r.kind == KindItem }

func (r ResourceID) String() string {
	return r.kind.String() + ":" + strconv.FormatUint(uint64(r.id), 10)
}

// ParseResourceID parses the "amount:12" / "item:7" form produced by String
func ParseResourceID(s string) (ResourceID, error) {
	prefix, value, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ResourceID{}, fmt.Errorf("resource id %q: expected <kind>:<number>", s)
	}

	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return ResourceID{}, fmt.Errorf("resource id %q: %w", s, err)
	}

	switch prefix {
	case "amount":
		return Amount(uint32(n)), nil
	case "item":
		return Item(uint32(n)), nil
	default:
		return ResourceID{}, fmt.Errorf("resource id %q: unknown kind %q", s, prefix)
	}
}
