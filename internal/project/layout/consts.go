package layout

const (
	//framework sources

	LAYX_DIRNAME        = "layx"
	LAYX_CSS_FILENAME   = "layx.css"
	LAYX_JS_FILENAME    = "layx.js"
	OUTPUT_DIRNAME      = "assets"
	SNAPSHOT_DIRNAME    = "snapshot"
	SNAPSHOT_VERSION    = "v1"
	BUILD_INFO_FILENAME = "build_info.json"

	//project assets

	ASSETS_DIRNAME        = "assets"
	CSS_DIRNAME           = "css"
	JS_DIRNAME            = "js"
	PAGES_DIRNAME         = "pages"
	IMAGES_DIRNAME        = "images"
	IMAGES_BACKUP_DIRNAME = ".original"
	FONTS_DIRNAME         = "fonts"

	//downloadable items

	COMPONENTS_DIRNAME = "components"
	TEMPLATES_DIRNAME  = "templates"
	BLOCKS_DIRNAME     = "blocks"

	//project configuration

	PROJECT_CONFIG_FILENAME = "layx.config.yaml"
	ENV_FILENAME            = ".env"

	//partials eligible for usage-driven synthesis

	OPTIMIZABLE_LAYOUT_CSS = LAYX_DIRNAME + "/main/layout/layout.css"
	OPTIMIZABLE_GRID_CSS   = LAYX_DIRNAME + "/main/grid/grid.css"
)
