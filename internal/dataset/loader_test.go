package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listingsCSV = `id,neighbourhood,room_type,price,beds,cleaning_fee,host_is_superhost
1,Mission,Entire home/apt,"$150.00",2,"$45.00",t
2,Mission,Private room,$85.00,1,,f
3,Noe Valley,Entire home/apt,"$1,200.00",3,$80.00,t
4,Castro,Private room,$95.00,1,$20.00,f
5,Mission,Shared room,$45.00,,$10.00,f
6,Sunset,Entire home/apt,$0.00,2,$30.00,t
7,Castro,Entire home/apt,$210.00,2,$55.00,
8,Richmond,Private room,NA,1,$15.00,f
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadInfersKinds(t *testing.T) {
	ds, err := Load(writeCSV(t, listingsCSV), DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, 8, ds.Rows())

	price, ok := ds.Column("price")
	require.True(t, ok)
	assert.Equal(t, KindNumeric, price.Kind)
	assert.Equal(t, 150.0, price.Nums[0])
	assert.Equal(t, 1200.0, price.Nums[2]) // thousands separator stripped
	assert.True(t, price.Missing[7])       // NA

	room, ok := ds.Column("room_type")
	require.True(t, ok)
	assert.Equal(t, KindCategorical, room.Kind)

	super, ok := ds.Column("host_is_superhost")
	require.True(t, ok)
	assert.Equal(t, KindBool, super.Kind)
	assert.Equal(t, 1.0, super.Nums[0])
	assert.True(t, super.Missing[6])

	beds, ok := ds.Column("beds")
	require.True(t, ok)
	assert.Equal(t, KindNumeric, beds.Kind)
	assert.True(t, beds.Missing[4])
}

func TestCleanFiltersAndDerives(t *testing.T) {
	ds, err := Load(writeCSV(t, listingsCSV), DefaultLoadOptions())
	require.NoError(t, err)

	out, err := Clean(ds, CleanOptions{
		Target:      "price",
		Cap:         1000,
		Drop:        []string{"id"},
		DeriveBools: []string{"neighbourhood"},
	})
	require.NoError(t, err)

	// Dropped: row 3 (over cap), row 6 (zero), row 8 (missing target).
	assert.Equal(t, 5, out.Rows())
	_, ok := out.Column("id")
	assert.False(t, ok)

	nb, ok := out.Column("neighbourhood")
	require.True(t, ok)
	assert.Equal(t, KindBool, nb.Kind)
	assert.Equal(t, 0, nb.MissingCount())

	y, err := out.Target("price")
	require.NoError(t, err)
	for _, v := range y {
		assert.Greater(t, v, 0.0)
		assert.LessOrEqual(t, v, 1000.0)
	}
}

func TestCleanFailsFastOnUnknownColumns(t *testing.T) {
	ds, err := Load(writeCSV(t, listingsCSV), DefaultLoadOptions())
	require.NoError(t, err)

	_, err = Clean(ds, CleanOptions{Target: "price", Cap: 1000, Drop: []string{"nope"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")

	_, err = Clean(ds, CleanOptions{Target: "nope", Cap: 1000})
	require.Error(t, err)

	_, err = Clean(ds, CleanOptions{Target: "price", Cap: 1000, DeriveBools: []string{"beds"}})
	require.Error(t, err) // beds is numeric, not categorical
}

func TestSelectAndDrop(t *testing.T) {
	ds, err := Load(writeCSV(t, listingsCSV), DefaultLoadOptions())
	require.NoError(t, err)

	sub, err := ds.Select([]int{0, 2, 4})
	require.NoError(t, err)
	assert.Equal(t, 3, sub.Rows())
	price, _ := sub.Column("price")
	assert.Equal(t, []float64{150, 1200, 45}, []float64{price.Nums[0], price.Nums[1], price.Nums[2]})

	_, err = ds.Select([]int{99})
	require.Error(t, err)
}

func TestSummarizeMarkdown(t *testing.T) {
	ds, err := Load(writeCSV(t, listingsCSV), DefaultLoadOptions())
	require.NoError(t, err)

	md := Summarize(ds, "listings.csv").Markdown()
	assert.Contains(t, md, "[DATASET SUMMARY]")
	assert.Contains(t, md, "[SCHEMA]")
	assert.Contains(t, md, "price: numeric")
	assert.Contains(t, md, "room_type: categorical")
}
