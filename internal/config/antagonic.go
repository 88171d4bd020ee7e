package config

// DefaultAntagonicAreas maps each legal area of the STF corpus to the area
// used as its source of hard negatives. Entries are one-directional.
// A fresh map is returned on each call.
func DefaultAntagonicAreas() map[string]string {
	return map[string]string{
		"DIREITO ADMINISTRATIVO":   "DIREITO PROCESSUAL PENAL",
		"DIREITO AMBIENTAL":        "DIREITO DO TRABALHO",
		"DIREITO CIVIL":            "DIREITO PENAL",
		"DIREITO CONSTITUCIONAL":   "DIREITO DO CONSUMIDOR",
		"DIREITO DO CONSUMIDOR":    "DIREITO ELEITORAL",
		"DIREITO DO TRABALHO":      "DIREITO TRIBUTÁRIO",
		"DIREITO ECONÔMICO":        "DIREITO PENAL",
		"DIREITO ELEITORAL":        "DIREITO PREVIDENCIÁRIO",
		"DIREITO FINANCEIRO":       "DIREITO PENAL",
		"DIREITO INTERNACIONAL":    "DIREITO TRIBUTÁRIO",
		"DIREITO MILITAR":          "DIREITO CIVIL",
		"DIREITO PENAL":            "DIREITO TRIBUTÁRIO",
		"DIREITO PREVIDENCIÁRIO":   "DIREITO PENAL",
		"DIREITO PROCESSUAL CIVIL": "DIREITO PENAL",
		"DIREITO PROCESSUAL PENAL": "DIREITO CIVIL",
		"DIREITO TRIBUTÁRIO":       "DIREITO ELEITORAL",
	}
}
