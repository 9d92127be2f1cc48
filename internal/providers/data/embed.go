package data

import _ "embed"

//go:embed airfrance.json
var AirFranceData []byte
