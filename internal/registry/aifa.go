package registry

// AIFA returns the profile for the Italian medicines register
// (medicinali.aifa.gov.it). Result items navigate to a detail page; the
// site shows a disclaimer modal on first load and an autocomplete
// suggestion list under the search input.
func AIFA() (*Profile, error) {
	p := &Profile{
		Name:     "aifa",
		StartURL: "https://medicinali.aifa.gov.it/it/#/it/",
		Mode:     ModeNavigate,

		ModalCheckbox: "#disclaimercheck",
		ModalAccept:   "button.btn.btn-outline-secondary:not([disabled])",

		SearchInputs: []string{
			"input.mat-mdc-autocomplete-trigger",
			`input[placeholder*="Ricerca"]`,
			`input[placeholder*="Search"]`,
			`input[aria-haspopup="listbox"]`,
			`input[role="combobox"]`,
			`input[type="text"]`,
		},
		SearchButtons: []string{
			"button#basic-addon2",
			"button.search-button",
		},
		SuggestionItems: []string{
			`ul[role="listbox"] li`,
			`div[role="listbox"] div[role="option"]`,
			"mat-option",
		},

		ResultMarkers: []string{
			"app-forma-dosaggio",
			`a[href*="/dettaglio/"]`,
			".custom-card-result",
		},
		ResultItems: []string{
			"app-forma-dosaggio",
			".custom-card-result",
		},

		DetailURLPattern: "/dettaglio/",
		TitleSelectors:   []string{"h1", ".text-primary h1", ".product-title"},
		DetailMarkers:    []string{".details-main", "app-details-page"},

		PDFLinkTexts: []string{
			"Foglio Illustrativo",
			"Riassunto Caratteristiche Prodotto",
			"Riassunto Caratteristiche",
			"RCP",
			"FI",
			"Summary of Product Characteristics",
		},

		MAHolder: LabelSpec{
			Synonyms: []string{
				"azienda titolare",
				"titolare aic",
				"titolare a.i.c.",
				"titolare",
				"marketing authorisation holder",
				"pharmaceutical company",
			},
			ExcludeHeadings: []string{
				"produttore",
				"forma farmaceutica",
				"codice atc",
				"principio attivo",
			},
		},
		Manufacturer: LabelSpec{
			Synonyms: []string{
				"produttore responsabile del rilascio dei lotti",
				"produttore",
				"manufacturer",
			},
			ExcludeHeadings: []string{
				"titolare",
				"forma farmaceutica",
				"codice atc",
			},
		},

		PDFMAHolder: PatternSpec{
			Patterns: []string{
				`(?i)Azienda titolare[:\s]+([^\n]{2,300})`,
				`(?i)Titolare dell['’]autorizzazione all['’]immissione in commercio:?\s*\n?((?:[^\n]+\n?){1,6})`,
				`(?i)Titolare A\.?I\.?C\.?[:\s]+([^\n]{2,300})`,
				`(?i)Marketing Authorisation Holder[:\s]+([^\n]{2,300})`,
				`(?i)Titolare[:\s]+([^\n]{2,300})`,
			},
			SectionLabels: []string{
				"produttore",
				"6. contenuto della confezione",
				"questo foglio illustrativo",
			},
			LabelLines: []string{"titolare"},
		},
		PDFManufacturer: PatternSpec{
			Patterns: []string{
				`(?i)Produttore responsabile del rilascio dei lotti:?\s*\n?((?:[^\n]+\n?){1,6})`,
				`(?i)Produttore[:\s]+([^\n]{2,300})`,
				`(?i)Manufacturer[:\s]+([^\n]{2,300})`,
				`(?i)Producer[:\s]+([^\n]{2,300})`,
			},
			SectionLabels: []string{
				"titolare",
				"questo foglio illustrativo",
			},
			LabelLines: []string{"produttore"},
		},

		ManufacturerHTMLPattern: `(?i)Produttore[:\s]*([^\n<]{3,200})`,
	}

	if err := p.finalize(); err != nil {
		return nil, err
	}
	return p, nil
}
