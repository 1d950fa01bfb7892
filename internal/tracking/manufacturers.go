package tracking

// manufacturerNames maps Bluetooth SIG company identifiers to display
// names. The table covers the vendors most commonly seen in short-range
// scans; unresolved IDs simply yield an empty name, never an error.
var manufacturerNames = map[int]string{
	0x0000: "Ericsson",
	0x0001: "Nokia",
	0x0002: "Intel",
	0x0003: "IBM",
	0x0004: "Toshiba",
	0x0006: "Microsoft",
	0x000A: "Qualcomm",
	0x000F: "Broadcom",
	0x0059: "Nordic Semiconductor",
	0x0075: "Samsung Electronics",
	0x0087: "Garmin",
	0x00E0: "Google",
	0x004C: "Apple",
	0x0157: "Huami",
	0x0171: "Amazon",
	0x015D: "Estimote",
	0x0499: "Ruuvi Innovations",
	0x02E5: "Espressif",
	0x038F: "Xiaomi",
	0x0131: "Cypress Semiconductor",
	0x0030: "ST Microelectronics",
	0x000D: "Texas Instruments",
	0x00D2: "Dialog Semiconductor",
	0x0078: "Nike",
	0x012D: "Sony",
	0x009E: "Bose",
	0x0154: "Tile",
	0x01DA: "Logitech",
}

// ManufacturerName resolves a numeric company identifier to a display
// name. Unknown identifiers return the empty string.
func ManufacturerName(id int) string {
	return manufacturerNames[id]
}
