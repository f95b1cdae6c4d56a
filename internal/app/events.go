package app

// NewEvent builds an Event with the given type and attribute pairs
// (k1, v1, k2, v2, ...), matching the teacher's pattern of building ad hoc
// logging/event structs (core/virtual_machine.go's Log{}) but typed to
// spec §4.7's ContractEvent shape.
func NewEvent(typ string, kv ...string) Event {
	attrs := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs[kv[i]] = kv[i+1]
	}
	return Event{Type: typ, Attributes: attrs}
}
