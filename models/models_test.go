package models

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocusSortKey(t *testing.T) {
	tests := map[string]string{
		"12.3-5":  "000012.000003",
		"fol. 4r": "fol.000004r",
		"007":     "000007",
		" 2, 10 ": "000002.000010",
		"":        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, LocusSortKey(in), in)
	}
}

func TestLocusSortKeyOrdersNumerically(t *testing.T) {
	loci := []string{"10.1", "2.15", "2.3-4", "1"}
	sort.Slice(loci, func(i, j int) bool {
		return LocusSortKey(loci[i]) < LocusSortKey(loci[j])
	})
	assert.Equal(t, []string{"1", "2.3-4", "2.15", "10.1"}, loci)
}

func TestWithAggregationActive(t *testing.T) {
	c := Collection{
		Name:         "text",
		Aggregations: AggregationConfigs{{Name: "author"}, {Name: "work"}},
	}

	disabled, err := c.WithAggregationActive("work", false)
	require.NoError(t, err)
	work, _ := disabled.Aggregations.Get("work")
	assert.False(t, work.IsActive())
	author, _ := disabled.Aggregations.Get("author")
	assert.True(t, author.IsActive())

	original, _ := c.Aggregations.Get("work")
	assert.True(t, original.IsActive(), "source collection must stay untouched")

	all, err := c.WithAggregationActive("", false)
	require.NoError(t, err)
	for _, a := range all.Aggregations {
		assert.False(t, a.IsActive())
	}

	_, err = c.WithAggregationActive("missing", true)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAggregationEnabled(t *testing.T) {
	values := NewFilterValues(nil)
	values.Set("author", FilterValue{Values: []string{"5"}})

	assert.True(t, AggregationConfig{Requires: []string{"author"}}.Enabled(values))
	assert.False(t, AggregationConfig{Requires: []string{"work"}}.Enabled(values))

	off := false
	assert.False(t, AggregationConfig{Active: &off}.Enabled(values))

	never := func(AggregationConfig, FilterValues) bool { return false }
	assert.False(t, AggregationConfig{Condition: never}.Enabled(values))
}

func TestAggregationConfigsSelection(t *testing.T) {
	aggs := AggregationConfigs{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	assert.Equal(t, []string{"a", "b", "c"}, aggs.Only(nil).Names())
	assert.Equal(t, []string{"a", "c"}, aggs.Only([]string{"c", "a"}).Names())
	assert.Equal(t, []string{"b"}, aggs.Without("a", "c").Names())
}

func TestDMYDateContiguous(t *testing.T) {
	y, m, d := 2000, 5, 1
	assert.True(t, DMYDate{Year: &y}.IsContiguous())
	assert.True(t, DMYDate{Year: &y, Month: &m}.IsContiguous())
	assert.True(t, DMYDate{Year: &y, Month: &m, Day: &d}.IsContiguous())
	assert.False(t, DMYDate{Year: &y, Day: &d}.IsContiguous())
	assert.False(t, DMYDate{Month: &m}.IsContiguous())
	assert.True(t, DMYDate{}.IsEmpty())
}

func TestFilterValuesJSON(t *testing.T) {
	values := NewFilterValues(map[string]interface{}{"author": []interface{}{"5"}})
	values.Set("author", FilterValue{Values: []string{"5"}, Operators: []Operator{OperatorOr}})

	assert.JSONEq(t, `{
		"author": {"value": ["5"], "operator": ["or"]},
		"_raw": {"author": ["5"]}
	}`, toJSON(t, values))

	without := values.Without("author")
	assert.Zero(t, without.Len())
	assert.Equal(t, 1, values.Len())
}

func TestFacetItemJSONFlattensExtra(t *testing.T) {
	item := FacetItem{ID: "5", Name: "Homer", Count: 3, Extra: map[string]interface{}{"work": []int{1}}}
	assert.JSONEq(t, `{"id": "5", "name": "Homer", "count": 3, "active": false, "work": [1]}`, toJSON(t, item))
}

func TestGetIndexInfo(t *testing.T) {
	c := Collection{Name: "text", Index: "text"}
	assert.Equal(t, "text", GetIndexInfo("", c).IndexName)
	assert.Equal(t, "prod_text", GetIndexInfo("prod", c).IndexName)
}
