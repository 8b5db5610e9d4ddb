package export

import "testing"

func TestBuildWorkbook(t *testing.T) {
	f, err := buildWorkbook([]SheetSpec{
		{
			Title:  "6A",
			Header: []string{"Élève", "Type"},
			Rows: [][]string{
				{"Dupont Paul", "ABSENCE"},
				{"Martin Léa", "RETARD"},
			},
		},
		{
			Title:  "Sans classe",
			Header: []string{"Élève", "Type"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	names := f.GetSheetList()
	if len(names) != 2 || names[0] != "6A" || names[1] != "Sans classe" {
		t.Fatalf("неожиданный набор листов: %v", names)
	}

	if v, _ := f.GetCellValue("6A", "A1"); v != "Élève" {
		t.Fatalf("заголовок A1: %q", v)
	}
	if v, _ := f.GetCellValue("6A", "B3"); v != "RETARD" {
		t.Fatalf("строка данных B3: %q", v)
	}
	// пустой лист — только заголовок
	if v, _ := f.GetCellValue("Sans classe", "A2"); v != "" {
		t.Fatalf("пустой лист не должен содержать данных: %q", v)
	}
}

func TestColName(t *testing.T) {
	cases := map[int]string{1: "A", 8: "H", 26: "Z", 27: "AA", 52: "AZ"}
	for n, want := range cases {
		if got := colName(n); got != want {
			t.Fatalf("colName(%d) = %q, ожидали %q", n, got, want)
		}
	}
}
