package datasets

import (
	"os"
	"path/filepath"
	"testing"
)

const testByproductsCSV = `Crop,By-products,Useful Domains
Rice,"Husk, Straw, Bran","Textiles, Paper"
Wheat,"Straw, Bran","Food Processing,Paper"
Sugarcane,"Bagasse, Molasses","Paper, Chemicals, Energy"
rice,Duplicate,Chemicals
`

const testCompaniesCSV = `CompanyName,District,CompanyIndustrialClassification,Registered_Office_Address,CompanyStatus,Distance,StarRating
Thanjavur Weaves,Thanjavur,Textiles,"12 Mill Road, Thanjavur",Active,12.5,4.1
Delta Paper Mills,THANJAVUR,Paper,"4 River St, Thanjavur",,,
Cauvery Chemicals,Thanjavur,Chemicals,"9 Canal Rd, Thanjavur",Active,30,3.9
Pune Paper Co,Pune,Paper,"1 FC Road, Pune",Strike Off,,4.8
Lower Textiles,Thanjavur,textiles,"7 Temple St, Thanjavur",Active,,
`

// writeTestCSVs writes the byproducts and companies fixtures into dir and
// returns their paths
func writeTestCSVs(t *testing.T, dir string) (string, string) {
	t.Helper()
	return writeFile(t, dir, "byproducts.csv", testByproductsCSV),
		writeFile(t, dir, "companies.csv", testCompaniesCSV)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}
