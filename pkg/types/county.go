package types

import "strings"

type County struct {
	Code string `json:"id"`
	Name string `json:"name"`
}

// Counties lists the Romanian counties by their vehicle-registration codes,
// sorted by name.
var Counties = []County{
	{"AB", "Alba"},
	{"AR", "Arad"},
	{"AG", "Argeș"},
	{"BC", "Bacău"},
	{"BH", "Bihor"},
	{"BN", "Bistrița-Năsăud"},
	{"BT", "Botoșani"},
	{"BR", "Brăila"},
	{"BV", "Brașov"},
	{"B", "București"},
	{"BZ", "Buzău"},
	{"CL", "Călărași"},
	{"CS", "Caraș-Severin"},
	{"CJ", "Cluj"},
	{"CT", "Constanța"},
	{"CV", "Covasna"},
	{"DB", "Dâmbovița"},
	{"DJ", "Dolj"},
	{"GL", "Galați"},
	{"GR", "Giurgiu"},
	{"GJ", "Gorj"},
	{"HR", "Harghita"},
	{"HD", "Hunedoara"},
	{"IL", "Ialomița"},
	{"IS", "Iași"},
	{"IF", "Ilfov"},
	{"MM", "Maramureș"},
	{"MH", "Mehedinți"},
	{"MS", "Mureș"},
	{"NT", "Neamț"},
	{"OT", "Olt"},
	{"PH", "Prahova"},
	{"SJ", "Sălaj"},
	{"SM", "Satu Mare"},
	{"SB", "Sibiu"},
	{"SV", "Suceava"},
	{"TR", "Teleorman"},
	{"TM", "Timiș"},
	{"TL", "Tulcea"},
	{"VS", "Vaslui"},
	{"VL", "Vâlcea"},
	{"VN", "Vrancea"},
}

// CountyName resolves a county code. Unknown codes return "", false.
func CountyName(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Counties {
		if c.Code == code {
			return c.Name, true
		}
	}
	return "", false
}
