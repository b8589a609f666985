package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Passes(t *testing.T) {
	path := setupTest(t, covidCSV)

	out, err := execute(t, "validate", "--covid", path)
	require.NoError(t, err)
	assert.Contains(t, out, "All validations passed.")
	assert.Contains(t, out, "Rows: 6, states: 2, dates: 2020-03-01 to 2020-03-03")
	assert.NotContains(t, out, "FAIL")
}

func TestValidate_UnmappedState(t *testing.T) {
	path := setupTest(t, covidCSV+"7,03/03/2020,Atlantis,Brazil,2020-03-03 12:00:00,1,0,0\n")

	out, err := execute(t, "validate", "--covid", path)
	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, out, `no code for "Atlantis"`)
	assert.Contains(t, out, "skipped: state mapping failed")
	assert.Contains(t, out, "Validation FAILED.")
}

func TestValidate_MissingColumn(t *testing.T) {
	path := setupTest(t, "ObservationDate,Province/State,Confirmed\n03/01/2020,Bahia,1\n")

	out, err := execute(t, "validate", "--covid", path)
	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, out, "Schema and load")
	assert.Contains(t, out, "Deaths")
	assert.NotContains(t, out, "Rows:")
}

func TestValidate_FractionalCounters(t *testing.T) {
	path := setupTest(t, `SNo,ObservationDate,Province/State,Country/Region,Last Update,Confirmed,Deaths,Recovered
1,03/01/2020,Sao Paulo,Brazil,2020-03-01 12:00:00,0.1,0.1,0
2,03/02/2020,Sao Paulo,Brazil,2020-03-02 12:00:00,0.3,0.2,0
3,03/03/2020,Sao Paulo,Brazil,2020-03-03 12:00:00,0.6,0.7,0
4,03/04/2020,Sao Paulo,Brazil,2020-03-04 12:00:00,0.7,1.1,0
`)

	out, err := execute(t, "validate", "--covid", path)
	require.NoError(t, err)
	assert.Contains(t, out, "All validations passed.")
	assert.NotContains(t, out, "sum to")
}

func TestCloseEnough(t *testing.T) {
	assert.True(t, closeEnough(0.1+0.2, 0.3))
	assert.True(t, closeEnough(5, 5))
	assert.False(t, closeEnough(5, 5.01))
}
