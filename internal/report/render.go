package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"contestatii/pkg/types"

	"github.com/go-pdf/fpdf"
)

const (
	fontFamily   = "Times"
	marginLeft   = 20.0
	textWidth    = 170.0
	contentTop   = 80.0
	bottomMargin = 20.0
	titleY       = 65.0
)

const title = "PROCES-VERBAL SOLUȚIONARE CERERE DE RECTIFICARE"

var gdprLines = []string{
	"Prezentul document conține date cu caracter personal protejate de prevederile",
	"Regulamentului UE 2016/679 privind protecția persoanelor fizice în ceea ce privește",
	"prelucrarea datelor cu caracter personal și privind libera circulație a acestor date (GDPR-",
	"General Data Protection Regulation).",
}

var noteLines = []string{
	"Notă:",
	"În situația în care cererea de rectificare afectează și alte imobile decât imobilul contestat,",
	"prin procesul verbal se dispune notarea cererii de rectificare în fișierele cgxml ale imobilelor",
	"afectate și rectificarea acestor imobilelor conform situației rezultate din acte, măsurători",
	"etc.",
}

// Core fonts are cp1252; the letters it lacks fold to their base form.
var folder = strings.NewReplacer(
	"ă", "a", "Ă", "A",
	"ș", "s", "Ș", "S", "ş", "s", "Ş", "S",
	"ț", "t", "Ț", "T", "ţ", "t", "Ţ", "T",
)

// Renderer lays out one proces-verbal per complaint into a single A4 PDF.
type Renderer struct {
	cfg   *Config
	clock func() time.Time
}

func NewRenderer(cfg *Config) *Renderer {
	return &Renderer{cfg: cfg, clock: time.Now}
}

// Render writes the PDF for rows, which are grouped by complaint in input
// order. It fails when rows is empty.
func (r *Renderer) Render(w io.Writer, rows []*types.ComplaintRow) error {
	pdf, err := r.build(rows)
	if err != nil {
		return err
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

func (r *Renderer) build(rows []*types.ComplaintRow) (*fpdf.Fpdf, error) {
	groups := groupRows(rows)
	if len(groups) == 0 {
		return nil, fmt.Errorf("no complaints to report")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(r.clock())
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(false, bottomMargin)
	pdf.SetMargins(marginLeft, 10, marginLeft)

	d := &document{
		pdf: pdf,
		cfg: r.cfg,
		tr:  pdf.UnicodeTranslatorFromDescriptor("cp1252"),
	}
	_, d.pageHeight = pdf.GetPageSize()

	pdf.SetHeaderFunc(d.header)
	pdf.SetFooterFunc(d.footer)

	for _, g := range groups {
		d.complaint(g)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to lay out report: %w", err)
	}

	return pdf, nil
}

// complaintGroup is one complaint with all its claimants.
type complaintGroup struct {
	row       *types.ComplaintRow
	claimants []claimantLine
}

type claimantLine struct {
	name    string
	address string
}

func groupRows(rows []*types.ComplaintRow) []*complaintGroup {
	groups := make([]*complaintGroup, 0)
	byID := make(map[string]*complaintGroup)

	for _, row := range rows {
		if row == nil {
			continue
		}

		g, ok := byID[row.ID]
		if !ok {
			g = &complaintGroup{row: row}
			byID[row.ID] = g
			groups = append(groups, g)
		}

		if row.PersonID == nil {
			continue
		}

		name := strings.TrimSpace(deref(row.LastName) + " " + deref(row.FirstName))
		g.claimants = append(g.claimants, claimantLine{name: name, address: deref(row.PersonalAddress)})
	}

	return groups
}

type document struct {
	pdf        *fpdf.Fpdf
	cfg        *Config
	tr         func(string) string
	pageHeight float64
	y          float64
}

func (d *document) text(s string) string {
	return d.tr(folder.Replace(s))
}

func (d *document) header() {
	d.pdf.SetFont(fontFamily, "", 11)
	d.centered(172, 20, fmt.Sprintf("Nr. %d/%s", d.pdf.PageNo(), d.cfg.Decision.Date))

	d.pdf.SetFontSize(8)
	y := 40.0
	for i, line := range d.cfg.Office.Lines {
		d.centered(105, y, line)
		switch i {
		case 0:
			d.pdf.Text(165, y, d.text(d.cfg.Office.Certification))
		case 1:
			d.pdf.Text(165, y, d.text(d.cfg.Office.Registration))
		}
		y += 4
	}
}

func (d *document) footer() {
	d.pdf.SetFont(fontFamily, "", 8)
	d.centered(105, 287, fmt.Sprintf("Pagina %d", d.pdf.PageNo()))

	y := 291.0
	for i, line := range d.cfg.Office.Lines {
		d.centered(105, y, line)
		if i == 0 {
			d.pdf.Text(165, y, d.text(d.cfg.Office.Certification))
		}
		y += 4
	}

	if d.cfg.Office.FooterNote != "" {
		d.pdf.Text(marginLeft, y, d.text(d.cfg.Office.FooterNote))
	}
}

func (d *document) centered(cx, y float64, s string) {
	t := d.text(s)
	d.pdf.Text(cx-d.pdf.GetStringWidth(t)/2, y, t)
}

func (d *document) newPage() {
	d.pdf.AddPage()
	d.pdf.SetFont(fontFamily, "", 11)
	d.y = contentTop
}

// ensure starts a new page unless h more millimetres fit above the bottom
// margin.
func (d *document) ensure(h float64) {
	if d.y+h > d.pageHeight-bottomMargin {
		d.newPage()
	}
}

// paragraph wraps s to width and keeps it on one page when it fits on one.
// Wrapping works on the translated single-byte text; SplitText would read it
// back as UTF-8.
func (d *document) paragraph(x, width, lineHeight float64, s string) {
	lines := d.pdf.SplitLines([]byte(d.text(s)), width)
	d.ensure(float64(len(lines)) * lineHeight)

	for _, line := range lines {
		d.ensure(lineHeight)
		d.pdf.Text(x, d.y, string(line))
		d.y += lineHeight
	}
}

// lines prints pre-broken lines; blank entries leave a gap.
func (d *document) lines(lineHeight float64, lines []string) {
	for _, line := range lines {
		d.ensure(lineHeight)
		if line != "" {
			d.pdf.Text(marginLeft, d.y, d.text(line))
		}
		d.y += lineHeight
	}
}

func (d *document) complaint(g *complaintGroup) {
	row := g.row

	d.newPage()

	d.pdf.SetFontSize(12)
	d.centered(105, titleY, title)
	d.pdf.SetFontSize(11)

	d.paragraph(marginLeft, textWidth, 6, fmt.Sprintf(
		"În aplicarea prevederilor art. 14 alin. (3) al Legii cadastrului și a publicității imobiliare nr. 7/1996, "+
			"republicată, cu modificările și completările ulterioare, comisia de soluționare a cererilor de rectificare "+
			"a documentelor tehnice ale cadastrului publicate pentru unitatea administrativ-teritorială %s, numită prin %s, "+
			"compusă din următorii membri:",
		d.uat(row), d.cfg.Decision.Appointment,
	))

	for i, m := range d.cfg.Commission {
		d.paragraph(marginLeft+5, textWidth-5, 5, fmt.Sprintf("%d. %s – %s – %s", i+1, m.Name, m.Role, m.Position))
	}

	d.y += 8
	d.ensure(30)
	d.paragraph(marginLeft, textWidth-10, 6, fmt.Sprintf(
		"Analizând cererea de rectificare nr.%d/%s formulată de %s, cu domiciliul în %s, cu privire la imobilul "+
			"identificat în documentele tehnice cadastrale ale unității administrativ-teritoriale %s sector cadastral - cu ID nr. %s.",
		row.SequenceNumber, requestDate(row), d.claimantNames(g), domicile(g, row), d.uat(row), orNA(row.PropertyID),
	))

	if docs := deref(row.AttachedDocuments); docs != "" {
		d.y += 8
		d.ensure(30)
		d.paragraph(marginLeft, textWidth-10, 6, "În baza "+docs)
	}

	d.y += 8
	d.ensure(30)
	d.pdf.Text(marginLeft, d.y, "DECIDE:")
	d.y += 8
	d.paragraph(marginLeft, textWidth-10, 6, decision(row))

	d.y += 10
	d.ensure(50)
	closing := []string{
		"Comisia de soluționare a cererilor de rectificare a documentelor tehnice ale",
		"cadastrului publicate dispune rectificarea imobilului în fișierele .cgxml, precum și în",
		"cuprinsul Opisului alfabetic al proprietarilor și Registrului cadastral al imobilelor.",
		"",
		"Prezentul proces-verbal se comunică persoanelor care au formulat cererea de",
		"rectificare și altor persoane interesate potrivit documentelor tehnice ale cadastrului.",
		"",
	}
	for _, recipient := range d.cfg.Recipients {
		closing = append(closing, "- "+recipient)
	}
	for _, c := range g.claimants {
		closing = append(closing, "- "+c.name)
	}
	closing = append(closing,
		"",
		"Procesul-verbal poate fi contestat cu plângere la judecătorie, în termen de 15 zile de",
		"la comunicare.",
	)
	d.lines(5, closing)

	d.ensure(40)
	d.y += 10
	d.pdf.Text(marginLeft, d.y, d.text("Semnăturile membrilor desemnați cu soluționarea cererilor de rectificare:"))
	d.y += 10
	for _, m := range d.cfg.Commission {
		d.ensure(15)
		d.pdf.Text(marginLeft, d.y, d.text(fmt.Sprintf("%s - %s;", m.Name, m.Position)))
		d.y += 7
	}

	d.ensure(40)
	d.y += 10
	d.pdf.SetFontSize(8)
	d.lines(4, gdprLines)
	d.y += 8
	d.lines(4, noteLines)
	d.pdf.SetFontSize(11)
}

func (d *document) uat(row *types.ComplaintRow) string {
	if uat := deref(row.UAT); uat != "" {
		return uat
	}
	if county := deref(row.County); county != "" {
		if name, ok := types.CountyName(county); ok {
			return name
		}
		return county
	}
	return d.cfg.Decision.DefaultUAT
}

func (d *document) claimantNames(g *complaintGroup) string {
	names := make([]string, 0, len(g.claimants))
	for _, c := range g.claimants {
		if c.name != "" {
			names = append(names, c.name)
		}
	}
	if len(names) == 0 {
		return "N/A"
	}
	return strings.Join(names, ", ")
}

func domicile(g *complaintGroup, row *types.ComplaintRow) string {
	for _, c := range g.claimants {
		if c.address != "" {
			return c.address
		}
	}
	return orNA(row.PropertyAddress)
}

func requestDate(row *types.ComplaintRow) string {
	switch {
	case row.RequestDate.Valid:
		return row.RequestDate.Format()
	case row.ChosenDate.Valid:
		return row.ChosenDate.Format()
	default:
		return row.CreatedAt.Format("02.01.2006")
	}
}

func decision(row *types.ComplaintRow) string {
	property := orNA(row.PropertyID)
	notes := deref(row.Notes)

	var s string
	switch row.Status() {
	case types.StatusApproved:
		s = "Admite cererea și dispune rectificarea imobilului cu ID " + property + " sector cadastral, astfel: "
		if notes == "" {
			notes = "conform documentelor depuse."
		}
	case types.StatusRejected:
		s = "Respinge cererea de rectificare privind imobilul cu ID " + property + ". "
	default:
		s = "Cererea de rectificare privind imobilul cu ID " + property + " se află în curs de soluționare (" +
			strings.ToLower(row.Status().Label()) + "). "
	}

	return strings.TrimSpace(s + notes)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func orNA(s *string) string {
	if v := deref(s); v != "" {
		return v
	}
	return "N/A"
}

// Filename is the attachment name for a report generated at t.
func Filename(t time.Time) string {
	return "proces-verbal-" + t.Format("2006-01-02") + ".pdf"
}
