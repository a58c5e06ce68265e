package registry

// RPL returns the profile for the Polish medicines register
// (rejestry.ezdrowie.gov.pl/rpl). Result cards expand in place via the
// "Materiały do pobrania" button and the listing paginates with a
// next-page control.
func RPL() (*Profile, error) {
	p := &Profile{
		Name:     "rpl",
		StartURL: "https://rejestry.ezdrowie.gov.pl/rpl/search/public",
		Mode:     ModeExpand,

		SearchInputs: []string{
			`input[formcontrolname="name"]`,
			`input[placeholder="Wpisz"]`,
		},
		SearchButtons: []string{
			"button.cez-button-primary",
			`button[type="submit"]`,
		},

		ResultMarkers: []string{
			"app-search-results",
			".cez-list",
			".list-organizer",
		},
		ResultItems: []string{
			".cez-cell.c-col",
			".cez-cell.cez-list",
		},

		ExpandButtons: []string{
			"button.materials-button",
			"button",
		},

		TitleSelectors: []string{"h1", "h2", "h3", ".title", ".product"},

		PDFLinkTexts: []string{
			"Ulotka",
			"Charakterystyka Produktu Leczniczego",
			"Materiały do pobrania",
		},

		NextButtons: []string{
			"button#cez-list-organizer-footer-0-paginator-footer-next",
			"button.cez-paginator-next",
		},

		MAHolder: LabelSpec{
			Synonyms: []string{
				"podmiot odpowiedzialny",
				"marketing authorisation holder",
				"ma holder",
			},
			ExcludeHeadings: []string{
				"wytwórca",
				"producent",
				"numer pozwolenia",
				"postać farmaceutyczna",
			},
		},
		Manufacturer: LabelSpec{
			Synonyms: []string{
				"wytwórca lub importer",
				"wytwórca",
				"producent",
				"manufacturer or importer responsible for batch release",
				"manufacturer",
			},
			ExcludeHeadings: []string{
				"podmiot odpowiedzialny",
				"numer pozwolenia",
				"postać farmaceutyczna",
			},
		},

		PDFMAHolder: PatternSpec{
			Patterns: []string{
				`(?i)Podmiot odpowiedzialny[:\s]*\n?((?:[^\n]+\n?){1,6})`,
				`(?i)Marketing Authorisation Holder[:\s]+([^\n]{2,300})`,
			},
			SectionLabels: []string{"wytwórca", "producent"},
			LabelLines:    []string{"podmiot odpowiedzialny"},
		},
		PDFManufacturer: PatternSpec{
			Patterns: []string{
				`(?i)Wytwórca lub importer[:\s]*\n?((?:[^\n]+\n?){1,6})`,
				`(?i)Wytwórca[:\s]*\n?((?:[^\n]+\n?){1,6})`,
				`(?i)Producent[:\s]+([^\n]{2,300})`,
				`(?i)Manufacturer[:\s]+([^\n]{2,300})`,
			},
			SectionLabels: []string{"podmiot odpowiedzialny"},
			LabelLines:    []string{"wytwórca", "producent"},
		},
	}

	if err := p.finalize(); err != nil {
		return nil, err
	}
	return p, nil
}
