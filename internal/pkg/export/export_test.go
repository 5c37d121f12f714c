package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
)

func sampleVisitors() []model.Visitor {
	project := &model.Project{Name: "Mata Atlântica"}
	plant := &model.Plant{Name: "Rosa", Code: "PA001", Project: project}
	return []model.Visitor{
		{
			Name:        "Apis mellifera",
			Number:      1,
			TypeVisitor: "social",
			ObservedOn:  datatypes.Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			ObservedAt:  datatypes.NewTime(9, 5, 0, 0),
			Latitude:    -15.79,
			Longitude:   -47.88,
			Resources:   []model.VisitorResource{{Value: "pólen"}, {Value: "néctar"}},
			Plant:       plant,
		},
		{
			Name:        "Heliconius, sp.",
			Number:      2,
			FlowerTypes: []model.VisitorFlowerType{{Value: "borboleta"}},
			ObservedOn:  datatypes.Date(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
			ObservedAt:  datatypes.NewTime(16, 30, 0, 0),
			Latitude:    -22.9,
			Longitude:   -43.2,
			Plant:       plant,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		export  bool
		wantErr bool
	}{
		{in: "", export: false},
		{in: "csv", want: FormatCSV, export: true},
		{in: "CSV", want: FormatCSV, export: true},
		{in: "1", want: FormatCSV, export: true},
		{in: "xlsx", want: FormatXLSX, export: true},
		{in: "pdf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, ok, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.export, ok)
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleVisitors())
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "Apis mellifera", "social", "Rosa (PA001)", "Mata Atlântica", "2024-01-01 09:05", "-15.79, -47.88", "pólen,néctar"}, rows[0])
	assert.Equal(t, []string{"2", "Heliconius, sp.", "borboleta", "Rosa (PA001)", "Mata Atlântica", "2024-06-01 16:30", "-22.9, -43.2", ""}, rows[1])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleVisitors()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, "Heliconius, sp.", records[2][1])
	assert.Equal(t, "pólen,néctar", records[1][7])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, nil))
	assert.Equal(t, "#,Visitor,Type,Plant,Project,Date/Time,Lat/Lng,Resources\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleVisitors()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "Rosa (PA001)", rows[1][3])
	assert.Equal(t, "2024-06-01 16:30", rows[2][5])
}

func TestFormatMetadata(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "visitors-20240301-120000.csv", FormatCSV.Filename(now))
	assert.Equal(t, "visitors-20240301-120000.xlsx", FormatXLSX.Filename(now))
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
}
