package ml

// Applicant is one insurance applicant as accepted by the prediction API.
type Applicant struct {
	Age      int     `json:"age"`
	Sex      string  `json:"sex"`
	BMI      float64 `json:"bmi"`
	Children int     `json:"children"`
	Smoker   string  `json:"smoker"`
	Region   string  `json:"region"`
}

// ReferenceApplicant is the row used to probe a model's output schema.
var ReferenceApplicant = Applicant{
	Age:      19,
	Sex:      "female",
	BMI:      27.9,
	Children: 0,
	Smoker:   "yes",
	Region:   "southwest",
}

func FeatureNames() []string {
	return []string{
		"age",
		"sex",
		"bmi",
		"children",
		"smoker",
		"region",
	}
}

// Frame lays the applicant out under the model's input column names.
func (a Applicant) Frame() Frame {
	frame := NewFrame()
	frame.Set("age", a.Age)
	frame.Set("sex", a.Sex)
	frame.Set("bmi", a.BMI)
	frame.Set("children", a.Children)
	frame.Set("smoker", a.Smoker)
	frame.Set("region", a.Region)
	return frame
}
