package excel

// PairConfig selects the subordinate and supervisor columns of a sheet
type PairConfig struct {
	FilePath  string `json:"file_path" yaml:"file_path"`
	Sheet     string `json:"sheet,omitempty" yaml:"sheet,omitempty"` // xlsx only, default Sheet1
	SubColumn string `json:"sub_column" yaml:"sub_column"`
	SupColumn string `json:"sup_column" yaml:"sup_column"`
}

// DefaultSheet is read when PairConfig.Sheet is empty
const DefaultSheet = "Sheet1"
