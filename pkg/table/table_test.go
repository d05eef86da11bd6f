package table

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID     string
	Name   string
	City   string
	Status string
	Points int
	Fine   float64
	Due    time.Time
}

var rowFields = Fields[row]{
	StringField("id", func(r row) string { return r.ID }),
	StringField("name", func(r row) string { return r.Name }),
	StringField("city", func(r row) string { return r.City }),
	StringField("status", func(r row) string { return r.Status }),
	IntField("points", func(r row) int { return r.Points }),
	FloatField("fine", func(r row) float64 { return r.Fine }),
	{Key: "due", Kind: KindTime, Get: func(r row) Value { return Time(r.Due) }},
}

var rowColumns = []Column[row]{
	{Key: "id", Header: "ID", Render: func(r row, _ int) string { return r.ID }},
	{Key: "name", Header: "NAME", Sortable: true, Render: func(r row, _ int) string { return r.Name }},
	{Key: "points", Header: "POINTS", Sortable: true, Render: func(r row, _ int) string { return strconv.Itoa(r.Points) }},
	{Key: "n", Header: "#", Render: func(_ row, i int) string { return strconv.Itoa(i + 1) }},
}

func sampleRows() []row {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []row{
		{ID: "1", Name: "Nguyễn Văn A", City: "Hà Nội", Status: "active", Points: 12, Fine: 1.5, Due: day},
		{ID: "2", Name: "Trần Thị B", City: "Hồ Chí Minh", Status: "pending", Points: 8},
		{ID: "3", Name: "Lê Văn C", City: "Hà Nội", Status: "pending", Points: 12, Due: day.AddDate(0, 1, 0)},
		{ID: "4", Name: "Phạm Minh D", City: "Đà Nẵng", Status: "active", Points: 3, Fine: 2},
		{ID: "5", Name: "Hoàng Thị E", City: "Hà Nội", Status: "active", Points: 0, Due: day.AddDate(0, -1, 0)},
	}
}

func ids(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestApplySearch_EmptyQueryIsNoOp(t *testing.T) {
	data := sampleRows()
	before := ids(data)

	for _, q := range []string{"", "   ", "\t\n"} {
		got := ApplySearch(data, q, rowFields, []string{"name"})
		assert.Equal(t, data, got)
	}
	assert.Equal(t, before, ids(data))
}

func TestApplySearch_Diacritics(t *testing.T) {
	data := []row{{ID: "a", Name: "Nguyễn Văn A"}, {ID: "b", Name: "Trần Thị B"}}
	keys := []string{"name"}

	assert.Equal(t, []string{"a"}, ids(ApplySearch(data, "văn", rowFields, keys)))
	assert.Equal(t, []string{"a"}, ids(ApplySearch(data, "Văn", rowFields, keys)))
	assert.Equal(t, []string{"a"}, ids(ApplySearch(data, "VĂN", rowFields, keys)))
	assert.Empty(t, ApplySearch(data, "Van", rowFields, keys), "diacritics are significant")

	decomposed := "va\u0306n"
	assert.Equal(t, []string{"a"}, ids(ApplySearch(data, decomposed, rowFields, keys)), "NFD query matches NFC data")
}

func TestApplySearch_MultipleFieldsAndUnknownKeys(t *testing.T) {
	data := sampleRows()
	got := ApplySearch(data, "hà nội", rowFields, []string{"name", "city", "nope"})
	assert.Equal(t, []string{"1", "3", "5"}, ids(got))

	got = ApplySearch(data, "12", rowFields, []string{"points"})
	assert.Equal(t, []string{"1", "3"}, ids(got))
}

func TestApplyFilters(t *testing.T) {
	data := sampleRows()

	active := ApplyFilters(data, FilterState{"status": "ACTIVE"}, rowFields)
	assert.Equal(t, []string{"1", "4", "5"}, ids(active))

	all := ApplyFilters(data, FilterState{"status": AllValue, "city": ""}, rowFields)
	assert.Equal(t, ids(data), ids(all))

	unknown := ApplyFilters(data, FilterState{"colour": "red"}, rowFields)
	assert.Equal(t, ids(data), ids(unknown), "unknown keys are ignored")

	exact := ApplyFilters(data, FilterState{"city": "Hà"}, rowFields)
	assert.Empty(t, exact, "filters are exact matches")
}

func TestApplyFilters_Commutative(t *testing.T) {
	data := sampleRows()
	status := FilterState{"status": "active"}
	city := FilterState{"city": "Hà Nội"}

	ab := ApplyFilters(ApplyFilters(data, status, rowFields), city, rowFields)
	ba := ApplyFilters(ApplyFilters(data, city, rowFields), status, rowFields)
	both := ApplyFilters(data, FilterState{"status": "active", "city": "Hà Nội"}, rowFields)

	assert.Equal(t, ids(ab), ids(ba))
	assert.Equal(t, ids(ab), ids(both))
	assert.Equal(t, []string{"1", "5"}, ids(both))
}

func TestApplySort(t *testing.T) {
	data := sampleRows()
	before := ids(data)

	asc := ApplySort(data, SortState{Field: "points", Direction: Asc}, rowFields)
	assert.Equal(t, []string{"5", "4", "2", "1", "3"}, ids(asc), "stable for equal points")
	assert.Equal(t, before, ids(data), "input is not mutated")

	desc := ApplySort(data, SortState{Field: "points", Direction: Desc}, rowFields)
	assert.Equal(t, []string{"1", "3", "2", "4", "5"}, ids(desc))

	byDue := ApplySort(data, SortState{Field: "due", Direction: Asc}, rowFields)
	assert.Equal(t, []string{"2", "4", "5", "1", "3"}, ids(byDue), "null dates sort first")

	assert.Equal(t, before, ids(ApplySort(data, SortState{}, rowFields)))
	assert.Equal(t, before, ids(ApplySort(data, SortState{Field: "missing"}, rowFields)))
}

func TestApplySort_Idempotent(t *testing.T) {
	for _, field := range rowFields.Keys() {
		for _, dir := range []Direction{Asc, Desc} {
			s := SortState{Field: field, Direction: dir}
			once := ApplySort(sampleRows(), s, rowFields)
			twice := ApplySort(once, s, rowFields)
			assert.Equal(t, ids(once), ids(twice), "%s %s", field, dir)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for _, in := range []string{"desc", "DESC", "Desc", "dEsC"} {
		assert.Equal(t, Desc, ParseDirection(in), in)
	}
	for _, in := range []string{"", "asc", "ASC", "descending", "down"} {
		assert.Equal(t, Asc, ParseDirection(in), in)
	}
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(Null(), String("")))
	assert.Equal(t, 1, Compare(Int(0), Null()))
	assert.Equal(t, 0, Compare(Null(), Null()))
	assert.Equal(t, -1, Compare(Int(2), Float(2.5)))
	assert.Equal(t, 0, Compare(Int(3), Float(3)))
	assert.Equal(t, -1, Compare(Bool(true), String("a")), "mixed kinds order by kind")
	assert.Equal(t, 1, Compare(String("b"), String("a")))
	assert.True(t, Time(time.Time{}).IsNull())
}

func TestPaginate_CoversAllRowsOnce(t *testing.T) {
	data := make([]int, 23)
	for i := range data {
		data[i] = i
	}
	for size := 1; size <= 30; size++ {
		var got []int
		for p := 1; p <= TotalPages(len(data), size); p++ {
			got = append(got, Paginate(data, p, size)...)
		}
		assert.Equal(t, data, got, "size %d", size)
	}
}

func TestPaginate_Clamps(t *testing.T) {
	data := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{5}, Paginate(data, 99, 2))
	assert.Equal(t, []int{1, 2}, Paginate(data, -3, 2))
	assert.Equal(t, []int{1}, Paginate(data, 1, 0))
	assert.Empty(t, Paginate([]int{}, 1, 10))

	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 5, TotalPages(5, 0))
}

func TestNewFilter_AllFirst(t *testing.T) {
	f := NewFilter("status", "Status", Options("active", "pending")...)
	require.Len(t, f.Options, 3)
	assert.Equal(t, AllValue, f.Options[0].Value)

	g := NewFilter("status", "Status", Option{"active", "Active"}, Option{AllValue, "Tất cả"})
	require.Len(t, g.Options, 2)
	assert.Equal(t, Option{AllValue, "Tất cả"}, g.Options[0])
	assert.True(t, g.Accepts("active"))
	assert.False(t, g.Accepts("revoke"))
}

func TestWhere(t *testing.T) {
	data := sampleRows()

	p, err := Where(rowFields, `status == "active" && points < 6`)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "5"}, ids(ApplyWhere(data, p)))

	p, err = Where(rowFields, `fine > 1`)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "4"}, ids(ApplyWhere(data, p)))

	_, err = Where(rowFields, `colour == "red"`)
	assert.Error(t, err)

	_, err = Where(rowFields, `points + 1`)
	assert.Error(t, err, "non-boolean expressions are rejected")

	assert.Equal(t, ids(data), ids(ApplyWhere[row](data, nil)))
}

func newTable(data []row, size int) *Table[row] {
	tbl := New(Config[row]{
		Fields:     rowFields,
		Columns:    rowColumns,
		SearchKeys: []string{"name", "city"},
		PageSize:   size,
	})
	tbl.SetData(data)
	return tbl
}

func TestTable_PageSizeResetsPage(t *testing.T) {
	tbl := newTable(sampleRows(), 1)
	tbl.GoToPage(3)
	require.Equal(t, 3, tbl.Page())

	tbl.SetPageSize(2)
	assert.Equal(t, 1, tbl.Page())
}

func TestTable_StateChangesResetPage(t *testing.T) {
	changes := map[string]func(*Table[row]){
		"search": func(tbl *Table[row]) { tbl.SetSearch("a") },
		"filter": func(tbl *Table[row]) { tbl.SetFilter("status", "active") },
		"sort":   func(tbl *Table[row]) { tbl.SetSort("name", Desc) },
		"toggle": func(tbl *Table[row]) { tbl.ToggleSort("points") },
		"where":  func(tbl *Table[row]) { require.NoError(t, tbl.SetWhere("points > 0")) },
		"clear":  func(tbl *Table[row]) { tbl.ClearFilters() },
	}
	for name, change := range changes {
		t.Run(name, func(t *testing.T) {
			tbl := newTable(sampleRows(), 1)
			tbl.GoToPage(4)
			require.Equal(t, 4, tbl.Page())
			change(tbl)
			assert.Equal(t, 1, tbl.Page())
		})
	}
}

func TestTable_View(t *testing.T) {
	tbl := newTable(sampleRows(), 2)
	tbl.SetFilter("city", "hà nội")
	tbl.SetSort("points", Desc)

	v := tbl.View()
	assert.Equal(t, 3, v.TotalItems)
	assert.Equal(t, 2, v.TotalPages)
	assert.Equal(t, []string{"1", "3"}, ids(v.Rows))
	assert.True(t, v.HasNext)
	assert.False(t, v.HasPrev)

	tbl.NextPage()
	v = tbl.View()
	assert.Equal(t, []string{"5"}, ids(v.Rows))
	assert.Equal(t, 2, v.Offset)
	assert.False(t, v.HasNext)

	tbl.NextPage()
	assert.Equal(t, 2, tbl.Page(), "next on last page stays put")

	tbl.SetFilter("city", AllValue)
	assert.Equal(t, 5, tbl.View().TotalItems)
}

func TestTable_SearchThenFilterOrder(t *testing.T) {
	tbl := newTable(sampleRows(), 10)
	tbl.SetSearch("văn")
	tbl.SetFilter("status", "pending")
	assert.Equal(t, []string{"3"}, ids(tbl.View().Rows))
}

func TestTable_ToggleSort(t *testing.T) {
	tbl := newTable(sampleRows(), 10)

	tbl.ToggleSort("points")
	assert.Equal(t, SortState{"points", Asc}, tbl.Sort())
	tbl.ToggleSort("points")
	assert.Equal(t, SortState{"points", Desc}, tbl.Sort())
	tbl.ToggleSort("id")
	assert.Equal(t, SortState{"points", Desc}, tbl.Sort(), "id column is not sortable")
}

func TestTable_EmptyData(t *testing.T) {
	tbl := newTable(nil, 10)
	tbl.GoToPage(5)
	v := tbl.View()
	assert.Equal(t, 0, v.TotalPages)
	assert.Equal(t, 1, v.CurrentPage)
	assert.Empty(t, v.Rows)
}

func TestTable_DataShrinkClampsPage(t *testing.T) {
	tbl := newTable(sampleRows(), 2)
	tbl.GoToPage(3)
	tbl.SetData(sampleRows()[:2])
	assert.Equal(t, 1, tbl.View().CurrentPage)
}

func TestRender(t *testing.T) {
	tbl := newTable(sampleRows(), 2)
	tbl.NextPage()

	var buf bytes.Buffer
	require.NoError(t, tbl.Render(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Lê Văn C")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[1]), "3"), fmt.Sprintf("row index is absolute: %q", lines[1]))
}
