package bank

type amountMode int

const (
	// amountSigned is one column where credits are positive ("Montante": "-10,00").
	amountSigned amountMode = iota
	// amountSplit is separate debit and credit columns.
	amountSplit
)

// Profile describes the column layout of one bank export format.
type Profile struct {
	Name       string
	DateCol    string
	DateLayout string
	DescCol    string
	AmountMode amountMode
	AmountCol  string
	DebitCol   string
	CreditCol  string
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	if p.AmountMode == amountSplit {
		return append(cols, p.DebitCol, p.CreditCol)
	}

	return append(cols, p.AmountCol)
}

// profiles are tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:       "card",
		DateCol:    "Data",
		DateLayout: "02-01-2006",
		DescCol:    "Descrição",
		AmountMode: amountSplit,
		DebitCol:   "Débito",
		CreditCol:  "Crédito",
	},
	{
		Name:       "statement",
		DateCol:    "Data mov.",
		DateLayout: "02-01-2006",
		DescCol:    "Descrição",
		AmountMode: amountSigned,
		AmountCol:  "Movimento",
	},
	{
		Name:       "account",
		DateCol:    "Data mov.",
		DateLayout: "02-01-2006",
		DescCol:    "Descrição",
		AmountMode: amountSigned,
		AmountCol:  "Montante",
	},
	{
		Name:       "transfers",
		DateCol:    "Data",
		DateLayout: "02/01/2006",
		DescCol:    "Referência",
		AmountMode: amountSigned,
		AmountCol:  "Valor",
	},
}
