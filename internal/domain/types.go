package domain

import "fmt"

// Field names a classification column of the annotated corpus
type Field string

const (
	FieldSubject    Field = "subject"
	FieldArea       Field = "area"
	FieldTheme      Field = "theme"
	FieldDiscussion Field = "discussion"
)

// Column returns the CSV header used for the field in the scraped datasets
func (f Field) Column() string {
	switch f {
	case FieldSubject:
		return "assunto"
	case FieldArea:
		return "area"
	case FieldTheme:
		return "tema"
	case FieldDiscussion:
		return "discussao"
	default:
		return string(f)
	}
}

// ParseField accepts either the field name or its CSV column
func ParseField(s string) (Field, error) {
	for _, f := range []Field{FieldSubject, FieldArea, FieldTheme, FieldDiscussion} {
		if s == string(f) || s == f.Column() {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown classification field: %q", s)
}

// Opinion is one annotated legal-text entry (an ementa and its labels)
type Opinion struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Subject    string `json:"subject,omitempty"`
	Area       string `json:"area,omitempty"`
	Theme      string `json:"theme,omitempty"`
	Discussion string `json:"discussion,omitempty"`
	Text       string `json:"text"`
}

// Value returns the classification label stored under f
func (o Opinion) Value(f Field) string {
	switch f {
	case FieldSubject:
		return o.Subject
	case FieldArea:
		return o.Area
	case FieldTheme:
		return o.Theme
	case FieldDiscussion:
		return o.Discussion
	default:
		return ""
	}
}

// Sample is one row of a generated dataset. Which text columns are
// meaningful depends on the dataset Kind.
type Sample struct {
	Source     string `json:"source,omitempty"`
	Group      string `json:"group,omitempty"`
	TextA      string `json:"text_a"`
	TextB      string `json:"text_b"`
	TextC      string `json:"text_c,omitempty"`
	Similarity int    `json:"similarity"`
}

// Kind selects the column layout of a dataset
type Kind string

const (
	KindPair      Kind = "pair"
	KindTriplet   Kind = "triplet"
	KindBenchmark Kind = "benchmark"
	KindLabeled   Kind = "labeled"
	KindGrouped   Kind = "grouped"
)

// Header returns the data columns written for the kind (without the index column)
func (k Kind) Header() []string {
	switch k {
	case KindTriplet:
		return []string{"ementa1", "ementa2", "ementa3"}
	case KindBenchmark:
		return []string{"source", "group", "ementa1", "ementa2", "similarity"}
	case KindLabeled:
		return []string{"assunto", "ementa1", "ementa2", "similarity"}
	case KindGrouped:
		return []string{"ementa1", "group"}
	default:
		return []string{"ementa1", "ementa2", "similarity"}
	}
}

// Texts returns how many of TextA, TextB and TextC a sample of the kind fills
func (k Kind) Texts() int {
	switch k {
	case KindGrouped:
		return 1
	case KindTriplet:
		return 3
	default:
		return 2
	}
}

// Split names used for exported files
const (
	SplitFull  = "full"
	SplitTrain = "train"
	SplitDev   = "dev"
	SplitEval  = "eval"
	SplitTest  = "test"
)

// Partition is a named subset of an exported dataset
type Partition struct {
	Name    string
	Samples []Sample
}
