package region

// Source kinds.
const (
	SourceZip = "zip"
	SourceDB  = "db"
)

// Config holds the region pipeline settings.
type Config struct {
	// Source selects the Entity Store: "zip" reads the archive, "db" the imported tables.
	Source string `mapstructure:"source" default:"zip"`
	// SourceZip is the path of the packaged registry archive.
	SourceZip string `mapstructure:"source_zip" default:"data/gar_xml.zip"`
	// OutputDir receives one flat file per region.
	OutputDir string `mapstructure:"output_dir" default:"data/regions"`
	// HouseTypes lists the house and building types kept by the filter.
	HouseTypes string `mapstructure:"house_types" default:"0,1,2,3,5,7,8,9,10"`
}
