package medicalinfo

import "slices"

// ClassName is the schema discriminator carried by every MedicalInfo payload.
const ClassName = "org.healthcare.basic.MedicalInfo"

// Record is one MedicalInfo asset as exchanged with the REST resource.
// Absent values are nil and travel as JSON null.
type Record struct {
	Class                 string   `json:"$class"`
	Owner                 *string  `json:"owner"`
	MedID                 *string  `json:"medId"`
	Medication            *string  `json:"medication"`
	PastVisitsArray       []string `json:"pastVisitsArray"`
	PermissionedDoctorsID []string `json:"permissionedDoctorsId"`
}

// ID returns the identity key, or "" when medId is absent.
func (r *Record) ID() string {
	return strVal(r.MedID)
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	return &Record{
		Class:                 r.Class,
		Owner:                 cloneStr(r.Owner),
		MedID:                 cloneStr(r.MedID),
		Medication:            cloneStr(r.Medication),
		PastVisitsArray:       slices.Clone(r.PastVisitsArray),
		PermissionedDoctorsID: slices.Clone(r.PermissionedDoctorsID),
	}
}

func cloneRecords(in []*Record) []*Record {
	if in == nil {
		return nil
	}
	out := make([]*Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// CreatePayload is the body sent when a record is created. It always carries
// the discriminator and all five keys.
type CreatePayload struct {
	Class                 string   `json:"$class"`
	Owner                 *string  `json:"owner"`
	MedID                 *string  `json:"medId"`
	Medication            *string  `json:"medication"`
	PastVisitsArray       []string `json:"pastVisitsArray"`
	PermissionedDoctorsID []string `json:"permissionedDoctorsId"`
}

// UpdatePayload is the body sent when a record is updated. medId is immutable
// and is addressed through the URL, so the type has no field for it.
type UpdatePayload struct {
	Class                 string   `json:"$class"`
	Owner                 *string  `json:"owner"`
	Medication            *string  `json:"medication"`
	PastVisitsArray       []string `json:"pastVisitsArray"`
	PermissionedDoctorsID []string `json:"permissionedDoctorsId"`
}

// Record converts a create payload into the stored record shape.
func (p *CreatePayload) Record() *Record {
	return &Record{
		Class:                 ClassName,
		Owner:                 p.Owner,
		MedID:                 p.MedID,
		Medication:            p.Medication,
		PastVisitsArray:       p.PastVisitsArray,
		PermissionedDoctorsID: p.PermissionedDoctorsID,
	}
}

// Apply returns a copy of existing with the payload's mutable fields written over it.
func (p *UpdatePayload) Apply(existing *Record) *Record {
	return &Record{
		Class:                 ClassName,
		Owner:                 p.Owner,
		MedID:                 existing.MedID,
		Medication:            p.Medication,
		PastVisitsArray:       p.PastVisitsArray,
		PermissionedDoctorsID: p.PermissionedDoctorsID,
	}
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
