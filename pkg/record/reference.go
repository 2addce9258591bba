package record

// TypeTag is the discriminator key used by the wire shape of a
// reference payload:
//
//	{"__type": "reference", "class": "Author", "id": "a1", "fields": {...}}
//
// The fields key carries an embedded snapshot and may be absent.
const (
	TypeTag       = "__type"
	TypeReference = "reference"
)

// Reference is an identity-bearing pointer to a remote object,
// optionally carrying an embedded snapshot of some or all of that
// object's fields. The snapshot, when present, is exclusively owned by
// this Reference instance.
//
// Two References with equal identity may carry snapshots of different
// completeness; identity equality says nothing about the embedded data.
type Reference struct {
	identity Identity
	snapshot *Record
}

// NewReference constructs a bare pointer.
func NewReference(class, id string) *Reference {
	return &Reference{identity: Identity{Class: class, ID: id}}
}

// NewReferenceWithSnapshot constructs a reference carrying an embedded
// snapshot. The reference takes ownership of snap.
func NewReferenceWithSnapshot(class, id string, snap *Record) *Reference {
	return &Reference{
		identity: Identity{Class: class, ID: id},
		snapshot: snap,
	}
}

func (r *Reference) Identity() Identity { return r.identity }
func (r *Reference) Class() string      { return r.identity.Class }
func (r *Reference) ID() string         { return r.identity.ID }

// HasData reports whether the reference carries more than bare
// identity.
func (r *Reference) HasData() bool {
	return r.snapshot != nil && (r.snapshot.Len() > 0 || r.snapshot.State() == StateFull)
}

// Materialize returns the typed Record behind this reference. A bare
// pointer materializes as an Unfetched record; the record is cached so
// repeated reads observe one instance and later fetches enrich the
// reference in place.
func (r *Reference) Materialize() *Record {
	if r.snapshot == nil {
		r.snapshot = NewUnfetched(r.identity.Class, r.identity.ID)
	}
	return r.snapshot
}

// Payload renders the wire shape of the reference. Embedded snapshot
// fields are carried under "fields".
func (r *Reference) Payload() map[string]any {
	p := map[string]any{
		TypeTag: TypeReference,
		"class": r.identity.Class,
		"id":    r.identity.ID,
	}
	if r.HasData() {
		p["fields"] = r.snapshot.Map()
	}
	return p
}

// unset is the deletion sentinel type.
type unset struct{}

// Unset clears a field to null regardless of prior state when assigned.
var Unset = unset{}

// IsUnset reports whether v is the deletion sentinel, in either its
// in-process or wire form ({"__op": "unset"}).
func IsUnset(v any) bool {
	if _, ok := v.(unset); ok {
		return true
	}
	if m, ok := v.(map[string]any); ok {
		op, ok := m["__op"].(string)
		return ok && op == "unset"
	}
	return false
}

// ReferenceFromPayload converts an identity-shaped payload into a
// Reference. fallbackClass is the declared association target; a class
// tag embedded in the payload overrides it. Returns false when the
// payload is not identity shaped.
func ReferenceFromPayload(v any, fallbackClass string) (*Reference, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	if tag, ok := m[TypeTag]; ok {
		if s, _ := tag.(string); s != TypeReference {
			return nil, false
		}
	}
	id, ok := m["id"].(string)
	if !ok || id == "" {
		return nil, false
	}
	class := fallbackClass
	if c, ok := m["class"].(string); ok && c != "" {
		class = c
	}
	if class == "" {
		return nil, false
	}
	if fields, ok := m["fields"].(map[string]any); ok && len(fields) > 0 {
		return NewReferenceWithSnapshot(class, id, NewSelective(class, id, fields)), true
	}
	return NewReference(class, id), true
}
