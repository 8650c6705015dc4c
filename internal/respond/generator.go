// Package respond generates first-contact message drafts for relevant leads.
// The tone follows the business's outreach style: friendly, factual, not
// pushy, and always asking for the details needed to quote.
package respond

import (
	"strings"

	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

const signature = "Viele Grüße\nSE Handwerk"

// Message templates per category and sub-template key.
var templates = map[domain.Category]map[string]string{
	domain.CategoryFlooring: {
		"standard": "Guten Tag,\n\n" +
			"gerne unterstützen wir Sie bei Ihren Bodenarbeiten. " +
			"Ob Laminat, Vinyl oder Klickvinyl – wir bringen Erfahrung und " +
			"saubere Ausführung mit.\n\n" +
			"Um den Aufwand realistisch einzuschätzen, würden wir vorab ein " +
			"paar kurze Infos benötigen:\n" +
			"- Fläche in m² (ca.)\n" +
			"- Aktueller Bodenbelag vorhanden?\n" +
			"- Gewünschtes Material (falls bereits bekannt)\n" +
			"- Fotos vom Raum wären ideal\n\n" +
			"Wir melden uns dann zeitnah mit einem transparenten Angebot.\n\n" +
			signature,
		"removal": "Guten Tag,\n\n" +
			"das Entfernen alter Bodenbeläge und die Untergrundvorbereitung " +
			"gehören zu unseren Kernleistungen. Gerne kümmern wir uns auch " +
			"um das anschließende Verlegen des neuen Bodens.\n\n" +
			"Könnten Sie uns kurz mitteilen:\n" +
			"- Welcher Belag soll entfernt werden?\n" +
			"- Fläche in m² (ca.)\n" +
			"- Soll direkt ein neuer Boden verlegt werden?\n\n" +
			signature,
		"skirting": "Guten Tag,\n\n" +
			"die Montage von Sockelleisten übernehmen wir gerne – " +
			"auch als separate Leistung. Sauberer Abschluss inklusive.\n\n" +
			"Kurze Info vorab:\n" +
			"- Wie viele Laufmeter ca.?\n" +
			"- Material vorhanden oder sollen wir beraten?\n\n" +
			signature,
	},
	domain.CategoryAssembly: {
		"standard": "Guten Tag,\n\n" +
			"Möbelmontage ist einer unserer Schwerpunkte – ob IKEA, " +
			"Markenmöbel oder Spezialaufbauten. Wir arbeiten sorgfältig " +
			"und bringen alles nötige Werkzeug mit.\n\n" +
			"Damit wir den Aufwand einschätzen können:\n" +
			"- Um welche Möbelstücke handelt es sich?\n" +
			"- Sind Aufbauanleitungen vorhanden?\n" +
			"- Wunschtermin?\n\n" +
			signature,
		"ikea": "Guten Tag,\n\n" +
			"IKEA-Montage machen wir regelmäßig – vom PAX-Schrank bis " +
			"zur kompletten Küche. Schnell, sauber, ohne Stress für Sie.\n\n" +
			"Kurze Fragen vorab:\n" +
			"- Welche Möbel sollen aufgebaut werden?\n" +
			"- Ist die Ware schon geliefert?\n" +
			"- Wandmontage nötig (z.B. Kippsicherung)?\n\n" +
			signature,
		"fitness": "Guten Tag,\n\n" +
			"der Aufbau von Fitnessgeräten und Homegym-Systemen ist " +
			"eine unserer Spezialisierungen. Egal ob Power Rack, Squat Rack " +
			"oder Multistation – wir kennen die gängigen Systeme und " +
			"sorgen für sichere Montage inkl. Wandbefestigung falls nötig.\n\n" +
			"Dafür bräuchten wir:\n" +
			"- Welches Gerät / Hersteller / Modell?\n" +
			"- Ist es bereits geliefert?\n" +
			"- Wand- oder Bodenbefestigung gewünscht?\n" +
			"- Fotos vom Aufstellort\n\n" +
			signature,
	},
	domain.CategoryHandover: {
		"standard": "Guten Tag,\n\n" +
			"Übergaberenovierungen sind bei uns in guten Händen. " +
			"Wir bieten alles aus einer Hand: Wände streichen, Böden " +
			"erneuern, Kleinreparaturen – schnell und zuverlässig.\n\n" +
			"Damit wir ein Angebot erstellen können:\n" +
			"- Wie groß ist die Wohnung (m² / Zimmer)?\n" +
			"- Welche Arbeiten sind nötig?\n" +
			"- Bis wann muss es fertig sein?\n" +
			"- Fotos wären sehr hilfreich\n\n" +
			signature,
		"landlord": "Guten Tag,\n\n" +
			"wir unterstützen regelmäßig Vermieter bei der " +
			"Instandsetzung zwischen Mieterwechseln. Schnelle " +
			"Terminvergabe und transparente Preise sind dabei " +
			"selbstverständlich.\n\n" +
			"Was wird benötigt?\n" +
			"- Wände / Decken streichen?\n" +
			"- Böden erneuern oder ausbessern?\n" +
			"- Kleinreparaturen?\n" +
			"- Wohnungsgröße?\n\n" +
			signature,
	},
	domain.CategoryOther: {
		"standard": "Guten Tag,\n\n" +
			"gerne unterstützen wir Sie bei Ihrem Vorhaben. " +
			"Um den Aufwand realistisch einzuschätzen, würden wir " +
			"vorab ein paar kurze Infos bzw. Fotos benötigen.\n\n" +
			"Was genau wird benötigt und bis wann?\n\n" +
			signature,
	},
}

// Sub-template selection keywords per category.
var subTemplateKeywords = map[domain.Category][]struct {
	key      string
	keywords []string
}{
	domain.CategoryFlooring: {
		{"removal", []string{"entfernen", "abreißen", "rausreißen", "alten boden"}},
		{"skirting", []string{"sockelleist", "fußleist"}},
	},
	domain.CategoryAssembly: {
		{"ikea", []string{"ikea", "pax", "kallax", "malm", "besta"}},
		{"fitness", []string{
			"fitness", "homegym", "power rack", "squat", "hantel",
			"kraftstation", "laufband", "gym", "trainingsgerät",
		}},
	},
	domain.CategoryHandover: {
		{"landlord", []string{"vermieter", "mieter", "mietwohnung", "vermietung"}},
	},
}

// Generator picks the best-fitting outreach draft for a scored listing.
type Generator struct {
	log logger.Logger
}

// NewGenerator builds the draft generator.
func NewGenerator(log logger.Logger) *Generator {
	return &Generator{log: log}
}

// Generate returns the outreach draft for the result's category, refined by
// keyword-based sub-template selection.
func (g *Generator) Generate(res domain.ScoredResult) string {
	category := res.Category
	byKey, ok := templates[category]
	if !ok {
		category = domain.CategoryOther
		byKey = templates[category]
	}

	key := g.pickSubTemplate(strings.ToLower(res.Listing.Text()), category)
	draft, ok := byKey[key]
	if !ok {
		draft = byKey["standard"]
	}

	g.log.Debug("draft template selected",
		logger.String("category", string(category)),
		logger.String("template", key))
	return draft
}

func (g *Generator) pickSubTemplate(text string, category domain.Category) string {
	for _, sub := range subTemplateKeywords[category] {
		for _, kw := range sub.keywords {
			if strings.Contains(text, kw) {
				return sub.key
			}
		}
	}
	return "standard"
}
