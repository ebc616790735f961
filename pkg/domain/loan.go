package domain

// Loan is a copy lent to a reader. Active is true until the copy is returned.
type Loan struct {
	ID       int64    `json:"id"`
	LoanedOn string   `json:"fechaReserva"`
	DueOn    string   `json:"fechaDevolucion"`
	Active   bool     `json:"estado"`
	Reader   Reader   `json:"usuario"`
	Copy     BookCopy `json:"copiaLibro"`
}

// NewLoanRequest registers a loan of a copy to a user.
type NewLoanRequest struct {
	User IDRef `json:"usuario"`
	Copy IDRef `json:"copiaLibro"`
}

// Fine is a penalty charged to a reader. Pending is true while unpaid.
type Fine struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"monto"`
	Description string  `json:"descripcion"`
	Pending     bool    `json:"estado"`
	User        struct {
		ID int64 `json:"usuario_id"`
	} `json:"usuario"`
}
