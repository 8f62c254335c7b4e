package core

// Response is the outbound shape produced from a terminal State: either an
// agent tag with a typed result, or an error message. Never both.
type Response struct {
	Agent  Task   `json:"agent,omitempty"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ErrorResponse builds a Response carrying only msg.
func ErrorResponse(msg string) Response { return Response{Error: msg} }

// Failed reports whether the response carries an error.
func (r Response) Failed() bool { return r.Error != "" }

// NewResponse validates the task/result pairing of a terminal state and
// converts the generic result into the task's typed record.
func NewResponse(s State) Response {
	if s.Failed() {
		return ErrorResponse(s.Error)
	}
	switch s.Task {
	case TaskICD10:
		codes, err := DecodeICD10Codes(s.Result)
		if err != nil {
			return ErrorResponse(err.Error())
		}
		return Response{Agent: TaskICD10, Result: codes}
	case TaskSOAP:
		note, err := DecodeSOAPNote(s.Result)
		if err != nil {
			return ErrorResponse(err.Error())
		}
		return Response{Agent: TaskSOAP, Result: note}
	case TaskImageAnalysis:
		report, err := DecodeRadiologyReport(s.Result, questionAsked(s.Payload))
		if err != nil {
			return ErrorResponse(err.Error())
		}
		return Response{Agent: TaskImageAnalysis, Result: report}
	default:
		return ErrorResponse(ErrUnknownAnalysisType.Error())
	}
}

func questionAsked(p Payload) bool {
	switch v := p.(type) {
	case ImageAnalysisPayload:
		return v.ClinicalNote != ""
	case nil:
		return false
	default:
		return p.Input().NoteText() != ""
	}
}
