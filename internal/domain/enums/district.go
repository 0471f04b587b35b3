package enums

import "strings"

type District string

// Administrative districts a profile can declare as home district.
const (
	DistrictAmpara       District = "ampara"
	DistrictAnuradhapura District = "anuradhapura"
	DistrictBadulla      District = "badulla"
	DistrictBatticaloa   District = "batticaloa"
	DistrictColombo      District = "colombo"
	DistrictGalle        District = "galle"
	DistrictGampaha      District = "gampaha"
	DistrictHambantota   District = "hambantota"
	DistrictJaffna       District = "jaffna"
	DistrictKalutara     District = "kalutara"
	DistrictKandy        District = "kandy"
	DistrictKegalle      District = "kegalle"
	DistrictKilinochchi  District = "kilinochchi"
	DistrictKurunegala   District = "kurunegala"
	DistrictMannar       District = "mannar"
	DistrictMatale       District = "matale"
	DistrictMatara       District = "matara"
	DistrictMonaragala   District = "monaragala"
	DistrictMullaitivu   District = "mullaitivu"
	DistrictNuwaraEliya  District = "nuwara-eliya"
	DistrictPolonnaruwa  District = "polonnaruwa"
	DistrictPuttalam     District = "puttalam"
	DistrictRatnapura    District = "ratnapura"
	DistrictTrincomalee  District = "trincomalee"
	DistrictVavuniya     District = "vavuniya"
)

var districts = map[District]struct{}{
	DistrictAmpara: {}, DistrictAnuradhapura: {}, DistrictBadulla: {},
	DistrictBatticaloa: {}, DistrictColombo: {}, DistrictGalle: {},
	DistrictGampaha: {}, DistrictHambantota: {}, DistrictJaffna: {},
	DistrictKalutara: {}, DistrictKandy: {}, DistrictKegalle: {},
	DistrictKilinochchi: {}, DistrictKurunegala: {}, DistrictMannar: {},
	DistrictMatale: {}, DistrictMatara: {}, DistrictMonaragala: {},
	DistrictMullaitivu: {}, DistrictNuwaraEliya: {}, DistrictPolonnaruwa: {},
	DistrictPuttalam: {}, DistrictRatnapura: {}, DistrictTrincomalee: {},
	DistrictVavuniya: {},
}

func ParseDistrict(raw string) (District, bool) {
	d := District(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := districts[d]
	return d, ok
}
