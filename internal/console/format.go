package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/c2h5oh/datasize"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/linskybing/regscan/internal/application"
	"github.com/linskybing/regscan/internal/domain/image"
	"github.com/linskybing/regscan/internal/domain/repo"
	"github.com/linskybing/regscan/internal/domain/report"
	"github.com/linskybing/regscan/internal/progress"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
	numStyle   = cellStyle.Align(lipgloss.Right)
)

// FormatBytes renders a byte count with binary units, e.g. "1.5 GB".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	return datasize.ByteSize(n).HumanReadable()
}

// Printer writes command results to a terminal.
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) title(s string) {
	fmt.Fprintln(p.out, titleStyle.Render(s))
}

// render prints a bordered table. Columns listed in numeric are right-aligned.
func (p *Printer) render(headers []string, rows [][]string, numeric ...int) {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(_, col int) lipgloss.Style {
			if right[col] {
				return numStyle
			}
			return cellStyle
		})
	fmt.Fprintln(p.out, t.String())
}

func (p *Printer) Repositories(repos []repo.RepositoryWithCount) {
	if len(repos) == 0 {
		fmt.Fprintln(p.out, warnStyle.Render("No repositories in the local snapshot. Run a scan first."))
		return
	}
	rows := make([][]string, 0, len(repos))
	for _, r := range repos {
		rows = append(rows, []string{r.RepositoryName, r.Region, strconv.FormatInt(r.ImageCount, 10), r.LastUpdated})
	}
	p.title("Repositories")
	p.render([]string{"Repository", "Region", "Images", "Last updated"}, rows, 2)
}

func (p *Printer) Stats(st *report.Stats) {
	p.title("Summary")
	p.render([]string{"Metric", "Value"}, [][]string{
		{"Repositories", strconv.FormatInt(st.Repositories, 10)},
		{"Images", strconv.FormatInt(st.Images, 10)},
		{"Total storage", FormatBytes(st.TotalSize)},
		{"Never-pulled storage", FormatBytes(st.NeverPulledSize)},
		{"Estimated monthly savings", fmt.Sprintf("$%.2f", st.MonthlySavings)},
		{"Errors recorded", strconv.FormatInt(st.ErrorsRecorded, 10)},
	}, 1)

	sizeRows := make([][]string, 0, len(st.TopBySize))
	for _, r := range st.TopBySize {
		sizeRows = append(sizeRows, []string{r.RepositoryName, r.Region, FormatBytes(r.TotalSize)})
	}
	p.title("Largest repositories")
	p.render([]string{"Repository", "Region", "Size"}, sizeRows, 2)

	countRows := make([][]string, 0, len(st.TopByImageCount))
	for _, r := range st.TopByImageCount {
		countRows = append(countRows, []string{r.RepositoryName, r.Region, strconv.FormatInt(r.ImageCount, 10)})
	}
	p.title("Repositories by image count")
	p.render([]string{"Repository", "Region", "Images"}, countRows, 2)

	p.NeverPulled(st.NeverPulled)
}

func (p *Printer) NeverPulled(rows []image.NeverPulledSummary) {
	if len(rows) == 0 {
		fmt.Fprintln(p.out, warnStyle.Render("No repositories with never-pulled images."))
		return
	}
	out := make([][]string, 0, len(rows))
	for i, r := range rows {
		out = append(out, []string{
			strconv.Itoa(i + 1),
			r.RepositoryName,
			r.Region,
			strconv.FormatInt(r.ImageCount, 10),
			FormatBytes(r.ImageSizeInBytes),
		})
	}
	p.title("Repositories with never-pulled images")
	p.render([]string{"#", "Repository", "Region", "Images", "Size"}, out, 0, 3, 4)
}

func (p *Printer) TagGroups(rows []image.TagGroupCount) {
	if len(rows) == 0 {
		fmt.Fprintln(p.out, warnStyle.Render("No tags found."))
		return
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.RepositoryName, r.Group, strconv.Itoa(r.Count)})
	}
	p.title("Tag groups")
	p.render([]string{"Repository", "Group", "Tags"}, out, 2)
}

func (p *Printer) ScanSummary(s *application.ScanSummary) {
	p.title("Scan complete")
	p.render([]string{"Regions", "Repositories", "Skipped", "Images", "Errors"}, [][]string{{
		strconv.Itoa(len(s.Regions)),
		strconv.Itoa(s.RepositoriesScanned),
		strconv.Itoa(s.RepositoriesSkipped),
		strconv.Itoa(s.ImagesSaved),
		strconv.Itoa(s.ErrorsRecorded),
	}}, 0, 1, 2, 3, 4)
}

func (p *Printer) CleanupResult(r *application.CleanupResult) {
	if !r.Confirmed {
		fmt.Fprintln(p.out, warnStyle.Render("Deletion cancelled."))
		return
	}
	p.title("Cleanup complete")
	p.render([]string{"Repositories", "Deleted", "Failed", "Removed locally"}, [][]string{{
		strconv.Itoa(r.Repositories),
		strconv.Itoa(r.Deleted),
		strconv.Itoa(r.Failed),
		strconv.FormatInt(r.LocalDeleted, 10),
	}}, 0, 1, 2, 3)
	for _, e := range r.Errors {
		fmt.Fprintln(p.out, warnStyle.Render(e))
	}
}

// Progress is a progress.Listener that prints one line per event.
func (p *Printer) Progress(ev progress.Event) error {
	switch ev.Kind {
	case progress.KindStart:
		fmt.Fprintln(p.out, titleStyle.Render("Scanning..."))
	case progress.KindProgress:
		fmt.Fprintf(p.out, "[%3d%%] %s\n", ev.Progress, ev.RepositoryName)
	case progress.KindError:
		fmt.Fprintln(p.out, warnStyle.Render(fmt.Sprintf("Scan failed: %v", ev.Err)))
	}
	return nil
}
