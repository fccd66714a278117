package audit

import (
	"fmt"
	"io"
)

// WriteText prints the human summary: the files with dead links and, when
// verbose, each dead target under its file.
func WriteText(w io.Writer, r *Report, verbose bool) error {
	if !r.HasDeadLinks() {
		_, err := fmt.Fprintln(w, "No dead links found.")
		return err
	}

	if _, err := fmt.Fprintf(w, "Found %d files with dead links:\n", len(r.Files)); err != nil {
		return err
	}
	for _, f := range r.Files {
		if !verbose {
			if _, err := fmt.Fprintf(w, "  %s\n", f.Name); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "  %s:\n", f.Name); err != nil {
			return err
		}
		for _, link := range f.DeadLinks {
			if _, err := fmt.Fprintf(w, "    - %s\n", link); err != nil {
				return err
			}
		}
	}
	return nil
}
