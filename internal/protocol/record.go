package protocol

// Component tags of an output row
const (
	ComponentTES = "TES"
	ComponentPCS = "PCS"
)

// Row is one technical element or program component of one skater, with the
// skater's summary fields repeated on every row. Judges holds j1..jN in order.
type Row struct {
	ElementOrder Token   `json:"element_order"`
	Element      Token   `json:"element"`
	BaseValue    Token   `json:"base_value"`
	GOE          Token   `json:"goe"`
	Factor       Token   `json:"factor"`
	Judges       []Token `json:"judges"`
	PanelScore   Token   `json:"panel_score"`
	Marks        string  `json:"marks,omitempty"`
	SecondHalf   bool    `json:"second_half"`
	Component    string  `json:"component"`

	Rank       Token  `json:"rank"`
	Name       string `json:"name"`
	Nation     string `json:"nation"`
	Stn        Token  `json:"stn"`
	TSS        Token  `json:"tss"`
	TES        Token  `json:"tes"`
	PCS        Token  `json:"pcs"`
	Deductions Token  `json:"deductions"`

	Source   string `json:"source"`
	Category string `json:"category,omitempty"`
}

// Rows flattens the record: technical rows first, then component rows, each in
// protocol order.
func (r *SkaterRecord) Rows(doc Document) []Row {
	rows := make([]Row, 0, len(r.Elements)+len(r.Components))

	for _, e := range r.Elements {
		row := r.base(doc)
		row.ElementOrder = e.Order
		row.Element = e.Element
		row.BaseValue = e.BaseValue
		row.GOE = e.GOE
		row.Judges = e.Judges
		row.PanelScore = e.PanelScore
		row.Marks = e.Marks
		row.SecondHalf = e.SecondHalf
		row.Component = ComponentTES
		rows = append(rows, row)
	}

	for _, c := range r.Components {
		row := r.base(doc)
		row.Element = c.Component
		row.Factor = c.Factor
		row.Judges = c.Judges
		row.PanelScore = c.PanelScore
		row.Component = ComponentPCS
		rows = append(rows, row)
	}

	return rows
}

func (r *SkaterRecord) base(doc Document) Row {
	s := r.Summary
	return Row{
		Rank:       s.Rank,
		Name:       s.Name,
		Nation:     s.Nation,
		Stn:        s.StartNumber,
		TSS:        s.TSS,
		TES:        s.TES,
		PCS:        s.PCS,
		Deductions: s.Deductions,
		Source:     doc.Source,
		Category:   doc.Category,
	}
}
