package medicalinfo

import (
	"fmt"
	"slices"
)

// Field names one of the five editable slots of the form.
type Field int

const (
	FieldOwner Field = iota
	FieldMedID
	FieldMedication
	FieldPastVisitsArray
	FieldPermissionedDoctorsID
)

// Fields lists every form field in declaration order.
var Fields = []Field{
	FieldOwner,
	FieldMedID,
	FieldMedication,
	FieldPastVisitsArray,
	FieldPermissionedDoctorsID,
}

// ArrayField names a sequence-typed field. Only these may be toggled.
type ArrayField int

const (
	PastVisitsArray ArrayField = iota
	PermissionedDoctorsID
)

// Field returns the general field handle for a.
func (a ArrayField) Field() Field {
	if a == PermissionedDoctorsID {
		return FieldPermissionedDoctorsID
	}
	return FieldPastVisitsArray
}

func (a ArrayField) String() string { return a.Field().String() }

type fieldHandle struct {
	name  string
	get   func(*Form) any
	set   func(*Form, any) bool
	clear func(*Form)
}

func scalarHandle(name string, slot func(*Form) **string) fieldHandle {
	return fieldHandle{
		name: name,
		get:  func(f *Form) any { return *slot(f) },
		set: func(f *Form, v any) bool {
			switch x := v.(type) {
			case nil:
				*slot(f) = nil
			case string:
				*slot(f) = &x
			case *string:
				*slot(f) = cloneStr(x)
			default:
				return false
			}
			return true
		},
		clear: func(f *Form) { *slot(f) = nil },
	}
}

func sequenceHandle(name string, slot func(*Form) *[]string) fieldHandle {
	return fieldHandle{
		name: name,
		get:  func(f *Form) any { return *slot(f) },
		set: func(f *Form, v any) bool {
			switch x := v.(type) {
			case nil:
				*slot(f) = nil
			case []string:
				*slot(f) = slices.Clone(x)
			default:
				return false
			}
			return true
		},
		clear: func(f *Form) { *slot(f) = nil },
	}
}

var fieldTable = map[Field]fieldHandle{
	FieldOwner:                 scalarHandle("owner", func(f *Form) **string { return &f.Owner }),
	FieldMedID:                 scalarHandle("medId", func(f *Form) **string { return &f.MedID }),
	FieldMedication:            scalarHandle("medication", func(f *Form) **string { return &f.Medication }),
	FieldPastVisitsArray:       sequenceHandle("pastVisitsArray", func(f *Form) *[]string { return &f.PastVisitsArray }),
	FieldPermissionedDoctorsID: sequenceHandle("permissionedDoctorsId", func(f *Form) *[]string { return &f.PermissionedDoctorsID }),
}

func (f Field) String() string {
	if h, ok := fieldTable[f]; ok {
		return h.name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Required reports whether the field carries a required marker. All five do;
// the marker is advisory and never blocks a submission.
func (f Field) Required() bool {
	_, ok := fieldTable[f]
	return ok
}

// Form is the live editable projection of a Record. The zero value is the
// empty snapshot.
type Form struct {
	Owner                 *string
	MedID                 *string
	Medication            *string
	PastVisitsArray       []string
	PermissionedDoctorsID []string
}

// Value returns the current value of field: a *string for scalar fields and
// a []string for sequence fields.
func (f *Form) Value(field Field) any {
	h, ok := fieldTable[field]
	if !ok {
		return nil
	}
	return h.get(f)
}

// Set assigns v to field. Scalar fields accept string, *string or nil;
// sequence fields accept []string or nil.
func (f *Form) Set(field Field, v any) error {
	h, ok := fieldTable[field]
	if !ok {
		return fmt.Errorf("unknown field %s", field)
	}
	if !h.set(f, v) {
		return fmt.Errorf("field %s: unsupported value type %T", field, v)
	}
	return nil
}

func (f *Form) sequence(a ArrayField) *[]string {
	if a == PermissionedDoctorsID {
		return &f.PermissionedDoctorsID
	}
	return &f.PastVisitsArray
}

// ToggleArrayMember removes the first occurrence of v from the field, or
// appends v when it is not present.
func (f *Form) ToggleArrayMember(a ArrayField, v string) {
	seq := f.sequence(a)
	if i := slices.Index(*seq, v); i >= 0 {
		*seq = slices.Delete(*seq, i, i+1)
		return
	}
	*seq = append(*seq, v)
}

// HasArrayMember reports whether v is present in the field.
func (f *Form) HasArrayMember(a ArrayField, v string) bool {
	return slices.Contains(*f.sequence(a), v)
}

// Reset sets all five fields to null.
func (f *Form) Reset() {
	for _, field := range Fields {
		fieldTable[field].clear(f)
	}
}

// PopulateFrom fills the form from rec. Every absent value (see isAbsent)
// becomes null, including empty strings and empty sequences.
func (f *Form) PopulateFrom(rec *Record) {
	f.Owner = scalarOrNil(rec.Owner)
	f.MedID = scalarOrNil(rec.MedID)
	f.Medication = scalarOrNil(rec.Medication)
	f.PastVisitsArray = sequenceOrNil(rec.PastVisitsArray)
	f.PermissionedDoctorsID = sequenceOrNil(rec.PermissionedDoctorsID)
}

// Missing returns the required fields whose value is currently absent.
func (f *Form) Missing() []Field {
	var missing []Field
	for _, field := range Fields {
		if field.Required() && isAbsent(f.Value(field)) {
			missing = append(missing, field)
		}
	}
	return missing
}

// Valid reports whether every required field holds a value.
func (f *Form) Valid() bool {
	return len(f.Missing()) == 0
}

// Clone returns a deep copy of the form.
func (f *Form) Clone() Form {
	out := *f
	out.Owner = cloneStr(f.Owner)
	out.MedID = cloneStr(f.MedID)
	out.Medication = cloneStr(f.Medication)
	out.PastVisitsArray = slices.Clone(f.PastVisitsArray)
	out.PermissionedDoctorsID = slices.Clone(f.PermissionedDoctorsID)
	return out
}

// IsEmpty reports whether the form equals the empty snapshot.
func (f *Form) IsEmpty() bool {
	return f.Owner == nil && f.MedID == nil && f.Medication == nil &&
		f.PastVisitsArray == nil && f.PermissionedDoctorsID == nil
}

func (f *Form) createPayload() *CreatePayload {
	c := f.Clone()
	return &CreatePayload{
		Class:                 ClassName,
		Owner:                 c.Owner,
		MedID:                 c.MedID,
		Medication:            c.Medication,
		PastVisitsArray:       c.PastVisitsArray,
		PermissionedDoctorsID: c.PermissionedDoctorsID,
	}
}

func (f *Form) updatePayload() *UpdatePayload {
	c := f.Clone()
	return &UpdatePayload{
		Class:                 ClassName,
		Owner:                 c.Owner,
		Medication:            c.Medication,
		PastVisitsArray:       c.PastVisitsArray,
		PermissionedDoctorsID: c.PermissionedDoctorsID,
	}
}

// isAbsent is the single absent-value rule used when populating the form:
// nil, the empty string, zero, false and empty sequences all count as absent.
// Legitimate zero, false or empty-string values are therefore dropped too.
func isAbsent(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *string:
		return x == nil || *x == ""
	case string:
		return x == ""
	case []string:
		return len(x) == 0
	case []any:
		return len(x) == 0
	case bool:
		return !x
	case int:
		return x == 0
	case int64:
		return x == 0
	case float64:
		return x == 0
	}
	return false
}

func scalarOrNil(s *string) *string {
	if isAbsent(s) {
		return nil
	}
	return cloneStr(s)
}

func sequenceOrNil(s []string) []string {
	if isAbsent(s) {
		return nil
	}
	return slices.Clone(s)
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
