package discover

import "testing"

const registersHTML = `<!DOCTYPE html>
<html>
<body>
<ul>
<li><a href="https://www.fagg-afmps.be/">Belgium</a></li>
<li><a href="https://medicinali.aifa.gov.it/it/">Italy</a></li>
<li><a href="/redirect/poland">Poland</a></li>
<li><a href="#top">Back to top</a></li>
</ul>
</body>
</html>`

func TestParseRegisterLinks(t *testing.T) {
	links, err := ParseRegisterLinks(registersHTML, "https://www.ema.europa.eu/en/medicines/national-registers")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := links["italy"]; got != "https://medicinali.aifa.gov.it/it/" {
		t.Errorf("italy link = %q, want AIFA URL", got)
	}
	if got := links["poland"]; got != "https://www.ema.europa.eu/redirect/poland" {
		t.Errorf("poland link = %q, want resolved relative URL", got)
	}
	if _, ok := links["belgium"]; ok {
		t.Error("unexpected belgium entry, only known countries should be returned")
	}
}

func TestParseRegisterLinks_HrefMatch(t *testing.T) {
	html := `<a href="https://rejestry.ezdrowie.gov.pl/rpl/search/public">Rejestr Produktów Leczniczych</a>`
	links, err := ParseRegisterLinks(html, "https://www.ema.europa.eu/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := links["poland"]; got != "https://rejestry.ezdrowie.gov.pl/rpl/search/public" {
		t.Errorf("poland link = %q, want RPL URL matched by href", got)
	}
}

func TestParseRegisterLinks_Empty(t *testing.T) {
	links, err := ParseRegisterLinks("<html><body><p>no links</p></body></html>", "https://www.ema.europa.eu/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("expected no links, got %v", links)
	}
}
