package medicalinfo

import (
	"slices"
	"testing"
)

func TestForm_ZeroValueIsEmpty(t *testing.T) {
	var f Form
	if !f.IsEmpty() {
		t.Fatal("zero form should be empty")
	}
	for _, field := range Fields {
		switch v := f.Value(field).(type) {
		case *string:
			if v != nil {
				t.Errorf("%s: expected nil, got %q", field, *v)
			}
		case []string:
			if v != nil {
				t.Errorf("%s: expected nil, got %v", field, v)
			}
		default:
			t.Errorf("%s: unexpected value type %T", field, v)
		}
	}
}

func TestForm_ToggleArrayMember(t *testing.T) {
	var f Form

	f.ToggleArrayMember(PermissionedDoctorsID, "d1")
	f.ToggleArrayMember(PermissionedDoctorsID, "d2")
	if !slices.Equal(f.PermissionedDoctorsID, []string{"d1", "d2"}) {
		t.Fatalf("expected [d1 d2], got %v", f.PermissionedDoctorsID)
	}

	f.ToggleArrayMember(PermissionedDoctorsID, "d1")
	if !slices.Equal(f.PermissionedDoctorsID, []string{"d2"}) {
		t.Fatalf("expected [d2], got %v", f.PermissionedDoctorsID)
	}
	if f.PastVisitsArray != nil {
		t.Errorf("toggle must not touch the other sequence, got %v", f.PastVisitsArray)
	}
}

func TestForm_ToggleTwiceRestoresMembership(t *testing.T) {
	f := Form{PastVisitsArray: []string{"v1", "v2"}}
	for _, v := range []string{"v1", "v3"} {
		before := f.HasArrayMember(PastVisitsArray, v)
		f.ToggleArrayMember(PastVisitsArray, v)
		f.ToggleArrayMember(PastVisitsArray, v)
		if got := f.HasArrayMember(PastVisitsArray, v); got != before {
			t.Errorf("%s: membership %v after double toggle, want %v", v, got, before)
		}
	}
}

func TestForm_ToggleRemovesFirstOccurrenceOnly(t *testing.T) {
	f := Form{PastVisitsArray: []string{"v1", "v2", "v1"}}
	f.ToggleArrayMember(PastVisitsArray, "v1")
	if !slices.Equal(f.PastVisitsArray, []string{"v2", "v1"}) {
		t.Errorf("expected [v2 v1], got %v", f.PastVisitsArray)
	}
}

func TestForm_HasArrayMemberIsPure(t *testing.T) {
	f := Form{PastVisitsArray: []string{"v1"}}
	before := f.Clone()
	if !f.HasArrayMember(PastVisitsArray, "v1") {
		t.Error("expected v1 to be a member")
	}
	if f.HasArrayMember(PastVisitsArray, "nope") {
		t.Error("did not expect nope to be a member")
	}
	if f.HasArrayMember(PermissionedDoctorsID, "v1") {
		t.Error("membership must be checked on the named field only")
	}
	if !slices.Equal(f.PastVisitsArray, before.PastVisitsArray) {
		t.Errorf("HasArrayMember modified the form: %v", f.PastVisitsArray)
	}
}

func TestForm_Set(t *testing.T) {
	var f Form
	if err := f.Set(FieldOwner, "p1"); err != nil {
		t.Fatalf("Set owner: %v", err)
	}
	if f.Owner == nil || *f.Owner != "p1" {
		t.Errorf("expected owner p1, got %v", f.Owner)
	}
	if err := f.Set(FieldPastVisitsArray, []string{"v1"}); err != nil {
		t.Fatalf("Set visits: %v", err)
	}
	if err := f.Set(FieldOwner, nil); err != nil || f.Owner != nil {
		t.Errorf("expected nil owner, got %v (err %v)", f.Owner, err)
	}

	if err := f.Set(FieldOwner, 42); err == nil {
		t.Error("expected type error for int on scalar field")
	}
	if err := f.Set(FieldPermissionedDoctorsID, "d1"); err == nil {
		t.Error("expected type error for string on sequence field")
	}
	if err := f.Set(Field(99), "x"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestForm_Reset(t *testing.T) {
	f := Form{
		Owner:                 strPtr("p1"),
		MedID:                 strPtr("m1"),
		Medication:            strPtr("aspirin"),
		PastVisitsArray:       []string{"v1"},
		PermissionedDoctorsID: []string{"d1"},
	}
	f.Reset()
	if !f.IsEmpty() {
		t.Errorf("expected empty form after reset, got %+v", f)
	}
}

func TestForm_PopulateFromCollapsesAbsentValues(t *testing.T) {
	f := Form{Owner: strPtr("stale")}
	f.PopulateFrom(&Record{
		Owner:                 strPtr(""),
		MedID:                 strPtr("m1"),
		Medication:            nil,
		PastVisitsArray:       []string{},
		PermissionedDoctorsID: []string{"d1"},
	})

	if f.Owner != nil {
		t.Errorf("empty owner should become nil, got %q", *f.Owner)
	}
	if f.MedID == nil || *f.MedID != "m1" {
		t.Errorf("expected medId m1, got %v", f.MedID)
	}
	if f.Medication != nil {
		t.Error("expected nil medication")
	}
	if f.PastVisitsArray != nil {
		t.Errorf("empty sequence should become nil, got %v", f.PastVisitsArray)
	}
	if !slices.Equal(f.PermissionedDoctorsID, []string{"d1"}) {
		t.Errorf("expected [d1], got %v", f.PermissionedDoctorsID)
	}
}

func TestForm_PopulateFromCopies(t *testing.T) {
	rec := &Record{MedID: strPtr("m1"), PastVisitsArray: []string{"v1"}}
	var f Form
	f.PopulateFrom(rec)
	f.ToggleArrayMember(PastVisitsArray, "v2")
	*f.MedID = "changed"

	if *rec.MedID != "m1" || len(rec.PastVisitsArray) != 1 {
		t.Errorf("editing the form changed the source record: %+v", rec)
	}
}

func TestForm_Missing(t *testing.T) {
	f := Form{MedID: strPtr("m1"), PastVisitsArray: []string{"v1"}}
	missing := f.Missing()
	want := []Field{FieldOwner, FieldMedication, FieldPermissionedDoctorsID}
	if !slices.Equal(missing, want) {
		t.Errorf("Missing() = %v, want %v", missing, want)
	}
	if f.Valid() {
		t.Error("form with missing fields should not be valid")
	}
}

func TestForm_Payloads(t *testing.T) {
	f := Form{
		Owner:           strPtr("p1"),
		MedID:           strPtr("m1"),
		PastVisitsArray: []string{"v1"},
	}

	cp := f.createPayload()
	if cp.Class != ClassName || strVal(cp.MedID) != "m1" || strVal(cp.Owner) != "p1" {
		t.Errorf("unexpected create payload %+v", cp)
	}
	up := f.updatePayload()
	if up.Class != ClassName || strVal(up.Owner) != "p1" {
		t.Errorf("unexpected update payload %+v", up)
	}

	// payloads are snapshots
	f.ToggleArrayMember(PastVisitsArray, "v2")
	if len(cp.PastVisitsArray) != 1 || len(up.PastVisitsArray) != 1 {
		t.Error("payload shares storage with the form")
	}
}

func TestField_StringAndRequired(t *testing.T) {
	names := map[Field]string{
		FieldOwner:                 "owner",
		FieldMedID:                 "medId",
		FieldMedication:            "medication",
		FieldPastVisitsArray:       "pastVisitsArray",
		FieldPermissionedDoctorsID: "permissionedDoctorsId",
	}
	for f, want := range names {
		if f.String() != want {
			t.Errorf("Field(%d).String() = %q, want %q", int(f), f.String(), want)
		}
		if !f.Required() {
			t.Errorf("%s should be required", want)
		}
	}
	if PermissionedDoctorsID.String() != "permissionedDoctorsId" {
		t.Errorf("unexpected ArrayField name %q", PermissionedDoctorsID.String())
	}
}

func TestIsAbsent(t *testing.T) {
	absent := []any{nil, (*string)(nil), strPtr(""), "", []string{}, []any{}, false, 0, int64(0), 0.0}
	for _, v := range absent {
		if !isAbsent(v) {
			t.Errorf("isAbsent(%#v) = false, want true", v)
		}
	}
	present := []any{strPtr("x"), "x", []string{"a"}, true, 1, 2.5}
	for _, v := range present {
		if isAbsent(v) {
			t.Errorf("isAbsent(%#v) = true, want false", v)
		}
	}
}
