package form

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eduSpec = GroupSpec{
	Prefix: "education",
	Fields: []string{"school_name", "subject_studied", "school_year_from", "school_year_to", "education_level"},
	Probes: []string{"school_name", "education_level"},
}

func subOf(kv map[string]string) *Submission {
	s := NewSubmission()
	for k, v := range kv {
		s.Set(k, v)
	}
	return s
}

func TestSubmissionGet(t *testing.T) {
	t.Parallel()
	s := subOf(map[string]string{"fullName": "  Ana Cruz  ", "blank": "   "})
	assert.Equal(t, "Ana Cruz", s.Get("fullName"))
	assert.Equal(t, "", s.Get("blank"))
	assert.Equal(t, "", s.Get("missing"))
	assert.True(t, s.Has("blank"))
	assert.False(t, s.Has("missing"))

	var nilSub *Submission
	assert.Equal(t, "", nilSub.Get("x"))
	assert.False(t, nilSub.Has("x"))
	assert.Empty(t, nilSub.Trimmed())
	assert.Empty(t, (&Submission{}).Trimmed())
}

func TestSubmissionTrimmed(t *testing.T) {
	t.Parallel()
	s := subOf(map[string]string{"fullName": "  Ana Cruz  ", "blank": "   ", "education[0][school_name]": " UP "})
	assert.Equal(t, map[string]string{
		"fullName":                  "Ana Cruz",
		"blank":                     "",
		"education[0][school_name]": "UP",
	}, s.Trimmed())
}

func TestParseGroup_SoftPresence(t *testing.T) {
	t.Parallel()

	t.Run("ordered records", func(t *testing.T) {
		s := subOf(map[string]string{
			"education[0][school_name]":     "UP Diliman",
			"education[0][education_level]": "Bachelor's",
			"education[1][school_name]":     " PHS ",
		})
		recs := ParseGroup(s, eduSpec)
		require.Len(t, recs, 2)
		assert.Equal(t, 0, recs[0].Index)
		assert.Equal(t, "UP Diliman", recs[0].Get("school_name"))
		assert.Equal(t, "PHS", recs[1].Get("school_name"))
		assert.Equal(t, "", recs[1].Get("subject_studied"))
	})

	t.Run("non-probe value keeps slot alive", func(t *testing.T) {
		s := subOf(map[string]string{"education[0][school_year_from]": "2015-01-01"})
		recs := ParseGroup(s, eduSpec)
		require.Len(t, recs, 1)
		assert.Equal(t, "", recs[0].Get("school_name"))
	})

	t.Run("probe key with empty value keeps slot alive", func(t *testing.T) {
		s := subOf(map[string]string{"education[0][school_name]": ""})
		recs := ParseGroup(s, eduSpec)
		require.Len(t, recs, 1)
		assert.True(t, recs[0].Blank())
	})

	t.Run("blank non-probe key ends sequence", func(t *testing.T) {
		s := subOf(map[string]string{"education[0][subject_studied]": "   "})
		assert.Empty(t, ParseGroup(s, eduSpec))
	})

	t.Run("gap ends sequence", func(t *testing.T) {
		s := subOf(map[string]string{
			"education[0][school_name]": "A",
			"education[2][school_name]": "C",
		})
		assert.Len(t, ParseGroup(s, eduSpec), 1)
	})

	t.Run("empty submission", func(t *testing.T) {
		assert.Empty(t, ParseGroup(NewSubmission(), eduSpec))
	})
}

func TestParseGroup_StrictPresence(t *testing.T) {
	t.Parallel()
	spec := eduSpec
	spec.Policy = StrictPresence

	s := subOf(map[string]string{
		"education[0][school_year_from]": "2015-01-01",
		"education[0][education_level]":  "Bachelor's",
	})
	assert.Empty(t, ParseGroup(s, spec), "defining key absent")

	s.Set("education[0][school_name]", "")
	recs := ParseGroup(s, spec)
	require.Len(t, recs, 1)
	assert.Equal(t, "Bachelor's", recs[0].Get("education_level"))
}

func TestParseGroup_LimitTruncates(t *testing.T) {
	t.Parallel()
	s := NewSubmission()
	for i := 0; i < 80; i++ {
		s.Set(fmt.Sprintf("language[%d][name]", i), fmt.Sprintf("L%d", i))
	}
	spec := GroupSpec{Prefix: "language", Fields: []string{"name", "fluency"}, Probes: []string{"name", "fluency"}}

	recs := ParseGroup(s, spec)
	require.Len(t, recs, DefaultGroupLimit)
	assert.Equal(t, "L49", recs[len(recs)-1].Get("name"))

	spec.Limit = 3
	assert.Len(t, ParseGroup(s, spec), 3)
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()
	p, err := ParsePolicy("strict")
	require.NoError(t, err)
	assert.Equal(t, StrictPresence, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, SoftPresence, p)

	_, err = ParsePolicy("loose")
	assert.Error(t, err)
}
