package domain

// Feature is one named column of a feature vector.
type Feature struct {
	Name  string
	Value float64
}

// FeatureVector is the single-row output of an extraction.
// Column names and their order are schema, not data.
type FeatureVector struct {
	Address       string       // lowercased subject address
	Kind          TransferKind // native | token
	SchemaVersion string       // output schema version
	Categorical   bool         // vocabulary indicator columns present
	Features      []Feature    // ordered columns
}

// Names returns column names in schema order.
func (v *FeatureVector) Names() []string {
	names := make([]string, len(v.Features))
	for i, f := range v.Features {
		names[i] = f.Name
	}
	return names
}

// Values returns column values in schema order.
func (v *FeatureVector) Values() []float64 {
	values := make([]float64, len(v.Features))
	for i, f := range v.Features {
		values[i] = f.Value
	}
	return values
}

// Get returns the value of a named column.
func (v *FeatureVector) Get(name string) (float64, bool) {
	for _, f := range v.Features {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

// Len returns the number of columns.
func (v *FeatureVector) Len() int {
	return len(v.Features)
}
