package ml

// Metrics holds evaluation results from a training run. Precision, recall and
// F1 are support-weighted averages across classes.
type Metrics struct {
	Accuracy     float64 `json:"accuracy"`
	Precision    float64 `json:"precision"`
	Recall       float64 `json:"recall"`
	F1           float64 `json:"f1_score"`
	TrainSamples int     `json:"train_samples"`
	TestSamples  int     `json:"test_samples"`
}

// Evaluate computes accuracy and weighted precision/recall/F1 from true and
// predicted class labels.
func Evaluate(yTrue, yPred []int, numClasses int) Metrics {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return Metrics{}
	}

	tp := make([]float64, numClasses)
	fp := make([]float64, numClasses)
	fn := make([]float64, numClasses)
	support := make([]float64, numClasses)

	correct := 0
	for i := range yTrue {
		support[yTrue[i]]++
		if yTrue[i] == yPred[i] {
			correct++
			tp[yTrue[i]]++
		} else {
			fp[yPred[i]]++
			fn[yTrue[i]]++
		}
	}

	var precision, recall, f1 float64
	total := float64(len(yTrue))
	for c := 0; c < numClasses; c++ {
		if support[c] == 0 {
			continue
		}
		var p, r float64
		if tp[c]+fp[c] > 0 {
			p = tp[c] / (tp[c] + fp[c])
		}
		if tp[c]+fn[c] > 0 {
			r = tp[c] / (tp[c] + fn[c])
		}
		var f float64
		if p+r > 0 {
			f = 2 * p * r / (p + r)
		}
		w := support[c] / total
		precision += w * p
		recall += w * r
		f1 += w * f
	}

	return Metrics{
		Accuracy:  float64(correct) / total,
		Precision: precision,
		Recall:    recall,
		F1:        f1,
	}
}
