package timesheet

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clockifyHeader = `"Project","Client","Description","Task","User","Group","Email","Tags","Type","Billable","Invoiced","Invoice ID","Start Date","Start Time","End Date","End Time","Duration (h)","Duration (decimal)","Date of creation","Deal ID"`

func collect(t *testing.T, input string, opts Options) ([]Row, []error) {
	t.Helper()
	seq, err := Parse(strings.NewReader(input), opts)
	require.NoError(t, err)

	var rows []Row
	var errs []error
	for row, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, row)
	}
	return rows, errs
}

func TestParse_ClockifyExport(t *testing.T) {
	input := clockifyHeader + "\n" +
		`"Thees - Azure Migration Advisory & Implement - 430980254956","Thees","Workshop","","Anna Schmidt","","anna@example.com","onsite, billable","","Yes","No","","19/02/2026","15:00","19/02/2026","18:30","03:30:00","3.50","","",""` + "\n" +
		`"Thees - Azure Migration Advisory & Implement - 430980254956","Thees","Review","","Ben Meyer","","ben@example.com","","","Yes","No","","20/02/2026","09:00","20/02/2026","10:15","01:15:00","1.25","","",""` + "\n"

	rows, errs := collect(t, input, Options{})
	require.Empty(t, errs)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "430980254956", first.ProjectID)
	assert.Equal(t, "Thees - Azure Migration Advisory & Implement", first.ProjectName)
	assert.Equal(t, "Thees", first.Client)
	assert.Equal(t, "Anna Schmidt", first.Employee)
	assert.Equal(t, "Workshop", first.Description)
	assert.Equal(t, "2026-02-19", first.Date.Format("2006-01-02"))
	assert.Equal(t, "2026-02", first.Month())
	assert.Equal(t, "15:00:00", first.StartTime.String())
	assert.Equal(t, "18:30:00", first.EndTime.String())
	assert.Equal(t, "3.5", first.Duration.String())
	assert.True(t, first.IsOnsite)

	assert.False(t, rows[1].IsOnsite)
	assert.Equal(t, "1.25", rows[1].Duration.String())
}

func TestParse_ColumnOrderAndCaseAreFree(t *testing.T) {
	input := "duration (H),  EMPLOYEE ,start date,Project ID,project,On-site,Extra\n" +
		"1:30:00,Anna,2026-03-02,P-1,Website Relaunch,ja,ignored\n"

	rows, errs := collect(t, input, Options{})
	require.Empty(t, errs)
	require.Len(t, rows, 1)

	assert.Equal(t, "P-1", rows[0].ProjectID)
	assert.Equal(t, "Website Relaunch", rows[0].ProjectName)
	assert.Equal(t, "1.5", rows[0].Duration.String())
	assert.True(t, rows[0].IsOnsite)
	assert.False(t, rows[0].StartTime.Valid)
}

func TestParse_DurationFormats(t *testing.T) {
	cases := map[string]string{
		"3.5":     "3.5",
		"3,5":     "3.5",
		"1:20":    "1.33",
		"0:20:00": "0.33",
		"02:45":   "2.75",
		"0.125":   "0.13",
		"8":       "8",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := parseDuration(in)
			require.NoError(t, err)
			assert.Equal(t, want, got.String())
		})
	}

	for _, in := range []string{"abc", "0", "-1", "0:00:10", "1:75", "1:2:3:4", "0.001"} {
		_, err := parseDuration(in)
		assert.Error(t, err, in)
	}
}

func TestParse_DateAndTimeFormats(t *testing.T) {
	for _, in := range []string{"19/02/2026", "19.02.2026", "2026-02-19", "9/2/2026"} {
		d, err := parseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, 2026, d.Year())
	}
	_, err := parseDate("2026/19/02")
	assert.Error(t, err)

	for in, want := range map[string]string{
		"15:00":    "15:00:00",
		"07:05:09": "07:05:09",
		"3:15 pm":  "15:15:00",
		"12:00 AM": "00:00:00",
		"":         "",
	} {
		c, err := parseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, c.String(), in)
	}
	_, err = parseClock("25:00")
	assert.Error(t, err)
}

func TestParse_InvalidDurationYieldsRowError(t *testing.T) {
	input := "Project,User,Start Date,Duration (decimal)\n" +
		"Alpha - 1,Anna,01/03/2026,2\n" +
		"Alpha - 1,Anna,02/03/2026,abc\n" +
		"Alpha - 1,Anna,03/03/2026,4\n"

	rows, errs := collect(t, input, Options{})
	assert.Len(t, rows, 2)
	require.Len(t, errs, 1)

	var rowErr *RowError
	require.True(t, errors.As(errs[0], &rowErr))
	assert.Equal(t, 3, rowErr.Row)
	assert.Equal(t, "Duration (decimal)", rowErr.Field)
	assert.ErrorIs(t, errs[0], ErrInvalidRow)
	assert.ErrorIs(t, errs[0], ErrMalformedInput)
}

func TestParse_DecimalDurationWinsOverHours(t *testing.T) {
	input := "Project,User,Start Date,Duration (h),Duration (decimal)\n" +
		"Alpha - 1,Anna,01/03/2026,01:00:00,1.75\n" +
		"Alpha - 1,Anna,02/03/2026,02:30:00,\n"

	rows, errs := collect(t, input, Options{})
	require.Empty(t, errs)
	require.Len(t, rows, 2)
	assert.Equal(t, "1.75", rows[0].Duration.String())
	assert.Equal(t, "2.5", rows[1].Duration.String())
}

func TestParse_MissingFieldsAreInvalid(t *testing.T) {
	input := "Project,User,Start Date,Duration (decimal),Start Time\n" +
		",Anna,01/03/2026,1,\n" +
		"Alpha - 1,,01/03/2026,1,\n" +
		"Alpha - 1,Anna,,1,\n" +
		"Alpha - 1,Anna,01/03/2026,1,noon\n" +
		"Alpha - " + strings.Repeat("9", MaxProjectIDLength+1) + ",Anna,01/03/2026,1,\n"

	rows, errs := collect(t, input, Options{})
	assert.Empty(t, rows)
	require.Len(t, errs, 5)

	fields := make([]string, 0, len(errs))
	for _, err := range errs {
		var rowErr *RowError
		require.True(t, errors.As(err, &rowErr))
		fields = append(fields, rowErr.Field)
	}
	assert.Equal(t, []string{"Project", "User", "Start Date", "Start Time", "Project"}, fields)
}

func TestParse_ValuesBeyondStorageLimits(t *testing.T) {
	long := strings.Repeat("x", MaxNameLength+1)
	input := "Project,Client,User,Description,Start Date,Duration (decimal)\n" +
		"Alpha - 1,Thees,Anna,,01/03/2026,99999999.99\n" +
		"Alpha - 1,Thees,Anna,,01/03/2026,100000000\n" +
		long + " - 1,Thees,Anna,,01/03/2026,1\n" +
		"Alpha - 1," + long + ",Anna,,01/03/2026,1\n" +
		"Alpha - 1,Thees," + long + ",,01/03/2026,1\n" +
		"Alpha - 1,Thees,Anna,a\x00b,01/03/2026,1\n" +
		"Alpha - 1,Thees," + strings.Repeat("ä", MaxNameLength) + ",,01/03/2026,1\n"

	rows, errs := collect(t, input, Options{})
	require.Len(t, rows, 2)
	assert.Equal(t, "99999999.99", rows[0].Duration.String())
	assert.Equal(t, MaxNameLength, utf8.RuneCountInString(rows[1].Employee))

	require.Len(t, errs, 5)
	fields := make([]string, 0, len(errs))
	for _, err := range errs {
		var rowErr *RowError
		require.True(t, errors.As(err, &rowErr))
		assert.ErrorIs(t, err, ErrInvalidRow)
		fields = append(fields, rowErr.Field)
	}
	assert.Equal(t, []string{"Duration (decimal)", "Project", "Client", "User", "Description"}, fields)
}

func TestParseDuration_Bounds(t *testing.T) {
	_, err := parseDuration("100000000:00")
	assert.Error(t, err)
	_, err = parseDuration("99999999:59:59")
	assert.Error(t, err)
	got, err := parseDuration("99999999:00")
	require.NoError(t, err)
	assert.Equal(t, "99999999", got.String())
	_, err = parseDuration("99999999999999999999:00")
	assert.Error(t, err)
}

func TestParse_OnsiteTags(t *testing.T) {
	input := "Project,User,Start Date,Duration (decimal),Tags\n" +
		"Alpha - 1,Anna,01/03/2026,1,Vor Ort\n" +
		"Alpha - 1,Anna,02/03/2026,1,customer site; travel\n" +
		"Alpha - 1,Anna,03/03/2026,1,remote\n"

	rows, errs := collect(t, input, Options{})
	require.Empty(t, errs)
	assert.True(t, rows[0].IsOnsite)
	assert.False(t, rows[1].IsOnsite)

	rows, errs = collect(t, input, Options{OnsiteTags: []string{"Customer Site"}})
	require.Empty(t, errs)
	assert.False(t, rows[0].IsOnsite)
	assert.True(t, rows[1].IsOnsite)
	assert.False(t, rows[2].IsOnsite)
}

func TestParse_MissingRequiredHeader(t *testing.T) {
	cases := map[string]string{
		"no project":  "User,Start Date,Duration (decimal)\n",
		"no employee": "Project,Start Date,Duration (decimal)\n",
		"no date":     "Project,User,Duration (decimal)\n",
		"no duration": "Project,User,Start Date\n",
		"empty":       "",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(input), Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedInput)
			assert.NotErrorIs(t, err, ErrInvalidRow)

			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, 1, rowErr.Row)
		})
	}
}

func TestParse_SyntaxErrorEndsSequence(t *testing.T) {
	input := "Project,User,Start Date,Duration (decimal)\n" +
		"Alpha - 1,Anna,01/03/2026,1\n" +
		"\"Alpha - 1,Anna,01/03/2026,1\n" +
		"Alpha - 1,Anna,02/03/2026,1\n"

	rows, errs := collect(t, input, Options{})
	assert.Len(t, rows, 1)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMalformedInput)
	assert.NotErrorIs(t, errs[0], ErrInvalidRow)
}

func TestParse_ByteOrderMark(t *testing.T) {
	input := "\ufeff\"Project\",\"User\",\"Start Date\",\"Duration (decimal)\"\n" +
		"Alpha - 1,Anna,01/03/2026,1\n"

	rows, errs := collect(t, input, Options{})
	require.Empty(t, errs)
	require.Len(t, rows, 1)
}

func TestParse_StopsWhenConsumerBreaks(t *testing.T) {
	input := "Project,User,Start Date,Duration (decimal)\n" +
		"Alpha - 1,Anna,01/03/2026,1\n" +
		"Alpha - 1,Anna,02/03/2026,1\n"

	p, err := NewParser(strings.NewReader(input), Options{})
	require.NoError(t, err)

	n := 0
	for range p.Rows() {
		n++
		break
	}
	assert.Equal(t, 1, n)

	for range p.Rows() {
		t.Fatal("rows must only be iterated once")
	}
}
