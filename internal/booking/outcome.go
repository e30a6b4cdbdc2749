package booking

// SubmissionState 提交狀態
type SubmissionState string

const (
	StateIdle       SubmissionState = "idle"
	StateSubmitting SubmissionState = "submitting"
)

// OutcomeStatus 一次提交的結果分類
type OutcomeStatus string

const (
	OutcomeSucceeded      OutcomeStatus = "succeeded"
	OutcomeFailed         OutcomeStatus = "failed"
	OutcomeInvalid        OutcomeStatus = "invalid"
	OutcomeEmptySelection OutcomeStatus = "empty_selection"
	OutcomeSalesClosed    OutcomeStatus = "sales_closed"
	// 已有提交進行中，此次直接丟棄
	OutcomeDropped OutcomeStatus = "dropped"
	// 流程已關閉，晚到的回應被忽略
	OutcomeDiscarded OutcomeStatus = "discarded"
)

// Outcome 取代全域 toast：由呼叫端決定如何呈現
type Outcome struct {
	Status          OutcomeStatus    `json:"status"`
	Message         string           `json:"message,omitempty"`
	ReservationCode string           `json:"reservation_code,omitempty"`
	Errors          ValidationErrors `json:"errors,omitempty"`
	Err             error            `json:"-"`
}

func (o Outcome) Succeeded() bool {
	return o.Status == OutcomeSucceeded
}

const (
	msgEmptySelection = "Please select at least one ticket"
	msgFixErrors      = "Please correct the highlighted fields"
	msgSubmitFailed   = "We could not complete your reservation. Please try again."
	msgNoTierSelected = "Please select a VIP experience"
)
