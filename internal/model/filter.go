package model

import "reflect"

// WithoutOwners returns a copy of m with every object's OwnerName cleared, for dbtoyaml's -O
// flag. Uses reflection over Model's slice fields rather than one hand-written loop
// per object kind, since every kind embeds Meta the same way and the set of kinds is large and
// grows with the schema object model.
func (m Model) WithoutOwners() Model {
	return m.mapMeta(func(meta *Meta) { meta.OwnerName = "" })
}

// WithoutPrivileges returns a copy of m with every object's privilege grants cleared, for
// dbtoyaml's -x flag.
func (m Model) WithoutPrivileges() Model {
	return m.mapMeta(func(meta *Meta) { meta.Privs = nil })
}

// mapMeta walks every slice field of a copy of m and applies fn to the embedded Meta of each
// element, in place on the copy.
func (m Model) mapMeta(fn func(*Meta)) Model {
	out := m
	v := reflect.ValueOf(&out).Elem()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() != reflect.Slice {
			continue
		}
		copied := reflect.MakeSlice(field.Type(), field.Len(), field.Len())
		reflect.Copy(copied, field)
		for j := 0; j < copied.Len(); j++ {
			elem := copied.Index(j)
			metaField := elem.FieldByName("Meta")
			if !metaField.IsValid() || !metaField.CanAddr() {
				continue
			}
			meta, ok := metaField.Addr().Interface().(*Meta)
			if !ok {
				continue
			}
			fn(meta)
		}
		field.Set(copied)
	}
	return out
}
