package domain

// Dataset holds parallel text samples and their labels.
type Dataset struct {
	Texts  []string
	Labels []string
}

func (d Dataset) Len() int {
	return len(d.Texts)
}

type TrainReport struct {
	TrainSize int      `json:"train_size"`
	TestSize  int      `json:"test_size"`
	Accuracy  float64  `json:"accuracy"`
	Classes   []string `json:"classes"`
	ModelPath string   `json:"model_path"`
}
