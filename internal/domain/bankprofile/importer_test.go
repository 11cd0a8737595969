package bankprofile

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImporter_Run_TemplateMergeAndInsert(t *testing.T) {
	repo := &fakeRepo{templates: map[string]*Template{
		"indian_bank_generic": {
			Name: "indian_bank_generic",
			TransactionPatterns: PatternBlock{
				"strategy":    StrategyRegex,
				"datePattern": `\d{2}/\d{2}/\d{4}`,
			},
			RegionalConfig: PatternBlock{"dateOrder": "DMY"},
		},
	}}
	importer := NewImporter(repo, testLogger())

	rows := []ImportRow{{
		BankCode:       "hdfc",
		BankName:       "HDFC Bank",
		CountryCode:    "in",
		CurrencyCode:   "INR",
		Template:       "indian_bank_generic",
		Aliases:        "hdfc netbanking, hdfc india",
		CustomPatterns: `{"transactionPatterns": {"amountPattern": "[\\d,]+\\.\\d{2}"}}`,
	}}

	report := importer.Run(context.Background(), rows)

	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Inserted)
	assert.Zero(t, report.Failed)
	require.Len(t, repo.inserted, 1)

	p := repo.inserted[0]
	assert.Equal(t, StrategyRegex, p.TransactionPatterns["strategy"], "template value must survive the merge")
	assert.Equal(t, `[\d,]+\.\d{2}`, p.TransactionPatterns["amountPattern"], "override must be layered on top")
	assert.Equal(t, "DMY", p.RegionalConfig["dateOrder"])
	assert.Equal(t, []string{"hdfc netbanking", "hdfc india"}, p.Aliases)
	assert.True(t, p.IsActive)
}

func TestImporter_Run_Idempotent(t *testing.T) {
	repo := &fakeRepo{insertDup: map[string]bool{}}
	importer := NewImporter(repo, testLogger())
	rows := []ImportRow{{BankCode: "sbi", BankName: "State Bank of India", CountryCode: "in"}}

	first := importer.Run(context.Background(), rows)
	assert.Equal(t, 1, first.Inserted)

	// Second run: the code now exists, so the row is skipped, not failed.
	repo.insertDup["sbi"] = true
	second := importer.Run(context.Background(), rows)
	assert.Zero(t, second.Inserted)
	assert.Equal(t, 1, second.Skipped)
	assert.Zero(t, second.Failed)
}

func TestImporter_Run_RowFailuresAreIsolated(t *testing.T) {
	repo := &fakeRepo{}
	importer := NewImporter(repo, testLogger())

	rows := []ImportRow{
		{BankCode: "good1", BankName: "Good One", CountryCode: "in"},
		{BankName: "No Code", CountryCode: "in"},
		{BankCode: "badjson", BankName: "Bad JSON", CountryCode: "in", CustomPatterns: `{not json`},
		{BankCode: "good2", BankName: "Good Two", CountryCode: "in"},
	}

	report := importer.Run(context.Background(), rows)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0], "row 2:")
	assert.Contains(t, report.Errors[1], "row 3:")
}

func TestImporter_Run_UnknownTemplate(t *testing.T) {
	repo := &fakeRepo{templates: map[string]*Template{}}
	importer := NewImporter(repo, testLogger())

	report := importer.Run(context.Background(), []ImportRow{
		{BankCode: "x", BankName: "X", CountryCode: "in", Template: "missing"},
	})

	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], `template "missing"`)
}

func TestImporter_Run_TemplateFetchedOncePerRun(t *testing.T) {
	repo := &fakeRepo{templates: map[string]*Template{
		"generic": {Name: "generic"},
	}}
	importer := NewImporter(repo, testLogger())

	rows := make([]ImportRow, 5)
	for i := range rows {
		rows[i] = ImportRow{
			BankCode:    "bank" + string(rune('a'+i)),
			BankName:    "Bank " + string(rune('A'+i)),
			CountryCode: "in",
			Template:    "generic",
		}
	}

	report := importer.Run(context.Background(), rows)
	assert.Equal(t, 5, report.Inserted)
	assert.Equal(t, 1, repo.templateCalls, "template lookups must be memoized per run")
}

func TestImporter_Run_MissingTemplateMemoizedToo(t *testing.T) {
	repo := &fakeRepo{templates: map[string]*Template{}}
	importer := NewImporter(repo, testLogger())

	rows := []ImportRow{
		{BankCode: "a", BankName: "A", CountryCode: "in", Template: "ghost"},
		{BankCode: "b", BankName: "B", CountryCode: "in", Template: "ghost"},
	}

	report := importer.Run(context.Background(), rows)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 1, repo.templateCalls, "a failed lookup must not be retried within the run")
}

func TestImporter_Run_InvalidPatternBlockRejected(t *testing.T) {
	repo := &fakeRepo{}
	importer := NewImporter(repo, testLogger())

	report := importer.Run(context.Background(), []ImportRow{{
		BankCode:       "bad",
		BankName:       "Bad Regex",
		CountryCode:    "in",
		CustomPatterns: `{"transactionPatterns": {"datePattern": "([unclosed"}}`,
	}})

	assert.Equal(t, 1, report.Failed)
	assert.Empty(t, repo.inserted)
}

func TestImporter_RunCSV(t *testing.T) {
	repo := &fakeRepo{}
	importer := NewImporter(repo, testLogger())

	csv := strings.Join([]string{
		"bank_code,bank_name,country_code,currency_code,aliases",
		"hdfc,HDFC Bank,in,INR,hdfc india",
		"sbi,State Bank of India,in,INR,",
	}, "\n")

	report, err := importer.RunCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
}

func TestImporter_RunJSON(t *testing.T) {
	repo := &fakeRepo{}
	importer := NewImporter(repo, testLogger())

	payload := `[{"bank_code": "dbs", "bank_name": "DBS Bank", "country_code": "sg"}]`
	report, err := importer.RunJSON(context.Background(), strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
}

func TestSplitAliases(t *testing.T) {
	assert.Nil(t, splitAliases(""))
	assert.Nil(t, splitAliases("  "))
	assert.Equal(t, []string{"a", "b"}, splitAliases(" a , b ,"))
}
