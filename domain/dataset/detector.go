package dataset

const (
	DefaultSampleSize       = 100
	DefaultCardinalityLimit = 10
)

// ColumnClassification partitions the non-target columns
type ColumnClassification struct {
	Numerical   []string `json:"numerical"`
	Categorical []string `json:"categorical"`
}

// Detector classifies columns by inspecting a leading sample of rows
type Detector struct {
	SampleSize       int
	CardinalityLimit int
}

// NewDetector returns a detector with the default sample size and threshold
func NewDetector() Detector {
	return Detector{SampleSize: DefaultSampleSize, CardinalityLimit: DefaultCardinalityLimit}
}

// DetectFeatureTypes classifies with the default detector
func DetectFeatureTypes(d Dataset, target string) ColumnClassification {
	return NewDetector().Detect(d, target)
}

// Detect splits the first row's keys, minus target, into numerical and categorical.
// A column is numerical when every sampled value is null, empty or numeric and it
// has more distinct non-empty values than the cardinality limit.
func (det Detector) Detect(d Dataset, target string) ColumnClassification {
	result := ColumnClassification{Numerical: []string{}, Categorical: []string{}}
	if len(d) == 0 {
		return result
	}

	sampleSize := det.SampleSize
	if sampleSize <= 0 || sampleSize > len(d) {
		sampleSize = len(d)
	}
	sample := d[:sampleSize]

	for _, col := range d.Columns() {
		if col == target {
			continue
		}
		if det.isNumerical(sample, col) {
			result.Numerical = append(result.Numerical, col)
		} else {
			result.Categorical = append(result.Categorical, col)
		}
	}
	return result
}

type distinctKey struct {
	present bool
	value   Value
}

func (det Detector) isNumerical(sample Dataset, col string) bool {
	numeric := true
	distinct := make(map[distinctKey]struct{})
	for _, row := range sample {
		v, ok := row.Get(col)
		if ok && isBlank(v) {
			continue
		}
		if !ok || !numericCompatible(v) {
			numeric = false
		}
		distinct[keyOf(v, ok)] = struct{}{}
	}
	return numeric && len(distinct) > det.CardinalityLimit
}

func isBlank(v Value) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func numericCompatible(v Value) bool {
	switch x := v.(type) {
	case float64, float32, int, int64:
		return true
	case string:
		_, ok := parseNumber(x)
		return ok
	default:
		return false
	}
}

// keyOf makes a comparable key; composite values fall back to their formatted text
func keyOf(v Value, present bool) distinctKey {
	switch v.(type) {
	case nil, float64, float32, int, int64, string, bool:
		return distinctKey{present: present, value: v}
	default:
		return distinctKey{present: present, value: "\x00" + FormatValue(v, present)}
	}
}
