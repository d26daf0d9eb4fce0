package session

// DefaultPageSize is the page size used when the user has not set one.
const DefaultPageSize = 10

// PageSpec holds the user-configurable pagination parameters.
type PageSpec struct {
	Size int
}

// Page is one slice of a result set.
type Page struct {
	Number int
	Total  int
	First  int // 1-based index of the first row on the page, 0 when empty
	Last   int // 1-based index of the last row on the page, 0 when empty
	Rows   [][]Value
}

// Paginate returns page number of rs sliced by spec. Page numbers are
// 1-based and total pages is ceil(rows/size); an empty result has 0 pages
// but page 1 is still valid and returns an empty page. It is a pure
// function: repeated calls with the same arguments yield the same page.
func Paginate(rs *ResultSet, spec PageSpec, number int) (*Page, error) {
	size := spec.Size
	if size < 1 {
		return nil, &InvalidArgumentError{Name: "page size", Value: size}
	}

	total := (rs.RowCount + size - 1) / size
	if number < 1 || (number > total && !(number == 1 && total == 0)) {
		return nil, &InvalidPageError{Number: number, Total: total}
	}

	start := (number - 1) * size
	end := start + size
	if end > rs.RowCount {
		end = rs.RowCount
	}

	p := &Page{Number: number, Total: total, Rows: rs.Rows[start:end]}
	if end > start {
		p.First = start + 1
		p.Last = end
	}
	return p, nil
}
