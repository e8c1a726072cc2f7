package compose

import (
	"fmt"
	"os"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Catalog maps language code → English phrase → localized phrase. English
// needs no table; missing phrases fall back to the English key, so partial
// tables are valid.
type Catalog map[string]map[string]string

// supported is the closed set of response languages. Requested tags are
// matched against it; everything else lands on English.
var supported = []language.Tag{
	language.English,
	language.Spanish,
	language.French,
	language.German,
	language.Portuguese,
	language.Italian,
	language.Swedish,
	language.Finnish,
	language.Norwegian,
	language.Danish,
	language.Dutch,
	language.Polish,
}

// langCodes mirrors supported index-for-index.
var langCodes = []string{"en", "es", "fr", "de", "pt", "it", "sv", "fi", "no", "da", "nl", "pl"}

var matcher = language.NewMatcher(supported)

// resolve matches a requested BCP 47 tag to a supported language code.
func resolve(lang string) string {
	if lang == "" {
		return "en"
	}
	_, idx := language.MatchStrings(matcher, lang)
	return langCodes[idx]
}

// LoadCatalog reads a phrase-catalog overlay from YAML: language code →
// English phrase → localized phrase.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locale catalog: %w", err)
	}
	var overlay Catalog
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse locale catalog: %w", err)
	}
	return overlay, nil
}

// builtinCatalog holds the compiled-in phrase tables. The first six
// languages carry the full phrase set; the remaining five cover the core
// interaction phrases and fall back to English for the rest.
var builtinCatalog = Catalog{
	"es": {
		"Select a power source":     "Seleccione una fuente de alimentación",
		"Select a feeder":           "Seleccione un alimentador",
		"Select a cooler":           "Seleccione un enfriador",
		"Select an interconnector":  "Seleccione un interconector",
		"Select a torch":            "Seleccione una antorcha",
		"Select accessories":        "Seleccione accesorios",
		"Tell me what you need: %s.":                                   "Dígame qué necesita: %s.",
		"Naming a specific model also works.":                          "También puede nombrar un modelo concreto.",
		"Or say 'skip' if this component is not needed.":               "O diga 'skip' si no necesita este componente.",
		"Or say 'done' when you have all the accessories you need.":    "O diga 'done' cuando tenga todos los accesorios que necesita.",
		"⚠️ No %s options matched your requirements.":                  "⚠️ Ninguna opción de %s coincide con sus requisitos.",
		"Try adjusting your requirements.":                             "Pruebe a ajustar sus requisitos.",
		"No exact match for your requirements; here is everything compatible:": "No hay coincidencia exacta con sus requisitos; esto es todo lo compatible:",
		"I found one match: **%[1]s** (GIN: %[2]s). Say 'yes' to select it.":    "Encontré una coincidencia: **%[1]s** (GIN: %[2]s). Diga 'yes' para seleccionarla.",
		"I found %[1]d compatible %[2]s options:":                               "Encontré %[1]d opciones de %[2]s compatibles:",
		"To select, reply with a number, a product name, or a GIN.":             "Para seleccionar, responda con un número, un nombre de producto o un GIN.",
		"✅ Selected **%[1]s** (GIN: %[2]s) for %[3]s.":                          "✅ Seleccionado **%[1]s** (GIN: %[2]s) para %[3]s.",
		"⏭️ Skipping %s selection.":                                             "⏭️ Omitiendo la selección de %s.",
		"⚠️ A power source is mandatory and cannot be skipped. Tell me your welding requirements or name a specific model.": "⚠️ La fuente de alimentación es obligatoria y no puede omitirse. Dígame sus requisitos de soldadura o nombre un modelo concreto.",
		"The selected power source does not use: %s.":                           "La fuente de alimentación seleccionada no utiliza: %s.",
		"⚠️ Only %[1]d of the required %[2]d components are selected. Add more before finalizing.": "⚠️ Solo hay %[1]d de los %[2]d componentes requeridos seleccionados. Añada más antes de finalizar.",
		"I didn't catch that. Could you restate your requirements?":             "No le he entendido. ¿Podría reformular sus requisitos?",
		"⚠️ The product catalogue is momentarily unavailable. Please try again.": "⚠️ El catálogo de productos no está disponible en este momento. Inténtelo de nuevo.",
		"👋 Welcome! Tell me about your welding needs and we'll assemble a complete setup, starting with the power source.": "👋 ¡Bienvenido! Cuénteme sus necesidades de soldadura y montaremos un equipo completo, empezando por la fuente de alimentación.",
		"Your previous session expired, so we're starting fresh.":               "Su sesión anterior caducó, así que empezamos de nuevo.",
		"⚠️ Something went wrong processing that turn. Nothing was changed; please try again.": "⚠️ Algo salió mal al procesar ese turno. No se cambió nada; inténtelo de nuevo.",
		"📋 **Final configuration:**":                                            "📋 **Configuración final:**",
		"Say 'confirm' to complete it, or tell me what to change.":              "Diga 'confirm' para completarla o dígame qué cambiar.",
		"✨ Configuration complete! Here is your final setup:":                   "✨ ¡Configuración completa! Este es su equipo final:",
		"Power Source":        "Fuente de alimentación",
		"Wire Feeder":         "Alimentador de hilo",
		"Cooling System":      "Sistema de refrigeración",
		"Interconnector Cable": "Cable interconector",
		"Welding Torch":       "Antorcha de soldadura",
		"Accessory":           "Accesorio",
	},
	"fr": {
		"Select a power source":    "Sélectionnez une source d'alimentation",
		"Select a feeder":          "Sélectionnez un dévidoir",
		"Select a cooler":          "Sélectionnez un refroidisseur",
		"Select an interconnector": "Sélectionnez un interconnecteur",
		"Select a torch":           "Sélectionnez une torche",
		"Select accessories":       "Sélectionnez des accessoires",
		"Tell me what you need: %s.":                                   "Dites-moi ce qu'il vous faut : %s.",
		"Naming a specific model also works.":                          "Vous pouvez aussi nommer un modèle précis.",
		"Or say 'skip' if this component is not needed.":               "Ou dites 'skip' si ce composant n'est pas nécessaire.",
		"Or say 'done' when you have all the accessories you need.":    "Ou dites 'done' quand vous avez tous les accessoires qu'il vous faut.",
		"⚠️ No %s options matched your requirements.":                  "⚠️ Aucune option de %s ne correspond à vos besoins.",
		"Try adjusting your requirements.":                             "Essayez d'ajuster vos besoins.",
		"No exact match for your requirements; here is everything compatible:": "Pas de correspondance exacte avec vos besoins ; voici tout ce qui est compatible :",
		"I found one match: **%[1]s** (GIN: %[2]s). Say 'yes' to select it.":    "J'ai trouvé une correspondance : **%[1]s** (GIN : %[2]s). Dites 'yes' pour la sélectionner.",
		"I found %[1]d compatible %[2]s options:":                               "J'ai trouvé %[1]d options de %[2]s compatibles :",
		"To select, reply with a number, a product name, or a GIN.":             "Pour sélectionner, répondez par un numéro, un nom de produit ou un GIN.",
		"✅ Selected **%[1]s** (GIN: %[2]s) for %[3]s.":                          "✅ **%[1]s** (GIN : %[2]s) sélectionné pour %[3]s.",
		"⏭️ Skipping %s selection.":                                             "⏭️ Sélection de %s ignorée.",
		"⚠️ A power source is mandatory and cannot be skipped. Tell me your welding requirements or name a specific model.": "⚠️ La source d'alimentation est obligatoire et ne peut pas être ignorée. Donnez-moi vos besoins en soudage ou nommez un modèle précis.",
		"The selected power source does not use: %s.":                           "La source d'alimentation sélectionnée n'utilise pas : %s.",
		"⚠️ Only %[1]d of the required %[2]d components are selected. Add more before finalizing.": "⚠️ Seulement %[1]d des %[2]d composants requis sont sélectionnés. Ajoutez-en avant de finaliser.",
		"I didn't catch that. Could you restate your requirements?":             "Je n'ai pas compris. Pourriez-vous reformuler vos besoins ?",
		"⚠️ The product catalogue is momentarily unavailable. Please try again.": "⚠️ Le catalogue produits est momentanément indisponible. Veuillez réessayer.",
		"👋 Welcome! Tell me about your welding needs and we'll assemble a complete setup, starting with the power source.": "👋 Bienvenue ! Parlez-moi de vos besoins en soudage et nous assemblerons un équipement complet, en commençant par la source d'alimentation.",
		"Your previous session expired, so we're starting fresh.":               "Votre session précédente a expiré, nous repartons de zéro.",
		"⚠️ Something went wrong processing that turn. Nothing was changed; please try again.": "⚠️ Une erreur s'est produite pendant ce tour. Rien n'a été modifié ; veuillez réessayer.",
		"📋 **Final configuration:**":                                            "📋 **Configuration finale :**",
		"Say 'confirm' to complete it, or tell me what to change.":              "Dites 'confirm' pour la terminer, ou dites-moi quoi changer.",
		"✨ Configuration complete! Here is your final setup:":                   "✨ Configuration terminée ! Voici votre équipement final :",
		"Power Source":        "Source d'alimentation",
		"Wire Feeder":         "Dévidoir",
		"Cooling System":      "Système de refroidissement",
		"Interconnector Cable": "Câble interconnecteur",
		"Welding Torch":       "Torche de soudage",
		"Accessory":           "Accessoire",
	},
	"de": {
		"Select a power source":    "Wählen Sie eine Stromquelle",
		"Select a feeder":          "Wählen Sie einen Drahtvorschub",
		"Select a cooler":          "Wählen Sie einen Kühler",
		"Select an interconnector": "Wählen Sie einen Verbinder",
		"Select a torch":           "Wählen Sie einen Brenner",
		"Select accessories":       "Wählen Sie Zubehör",
		"Tell me what you need: %s.":                                   "Sagen Sie mir, was Sie brauchen: %s.",
		"Naming a specific model also works.":                          "Sie können auch ein konkretes Modell nennen.",
		"Or say 'skip' if this component is not needed.":               "Oder sagen Sie 'skip', wenn diese Komponente nicht benötigt wird.",
		"Or say 'done' when you have all the accessories you need.":    "Oder sagen Sie 'done', wenn Sie alles Zubehör haben.",
		"⚠️ No %s options matched your requirements.":                  "⚠️ Keine %s-Optionen entsprechen Ihren Anforderungen.",
		"Try adjusting your requirements.":                             "Versuchen Sie, Ihre Anforderungen anzupassen.",
		"No exact match for your requirements; here is everything compatible:": "Keine exakte Übereinstimmung mit Ihren Anforderungen; hier ist alles Kompatible:",
		"I found one match: **%[1]s** (GIN: %[2]s). Say 'yes' to select it.":    "Ich habe einen Treffer gefunden: **%[1]s** (GIN: %[2]s). Sagen Sie 'yes', um ihn auszuwählen.",
		"I found %[1]d compatible %[2]s options:":                               "Ich habe %[1]d kompatible %[2]s-Optionen gefunden:",
		"To select, reply with a number, a product name, or a GIN.":             "Zum Auswählen antworten Sie mit einer Nummer, einem Produktnamen oder einer GIN.",
		"✅ Selected **%[1]s** (GIN: %[2]s) for %[3]s.":                          "✅ **%[1]s** (GIN: %[2]s) für %[3]s ausgewählt.",
		"⏭️ Skipping %s selection.":                                             "⏭️ Auswahl für %s wird übersprungen.",
		"⚠️ A power source is mandatory and cannot be skipped. Tell me your welding requirements or name a specific model.": "⚠️ Eine Stromquelle ist obligatorisch und kann nicht übersprungen werden. Nennen Sie mir Ihre Schweißanforderungen oder ein konkretes Modell.",
		"The selected power source does not use: %s.":                           "Die gewählte Stromquelle verwendet nicht: %s.",
		"⚠️ Only %[1]d of the required %[2]d components are selected. Add more before finalizing.": "⚠️ Nur %[1]d der erforderlichen %[2]d Komponenten sind ausgewählt. Fügen Sie weitere hinzu, bevor Sie abschließen.",
		"I didn't catch that. Could you restate your requirements?":             "Das habe ich nicht verstanden. Könnten Sie Ihre Anforderungen neu formulieren?",
		"⚠️ The product catalogue is momentarily unavailable. Please try again.": "⚠️ Der Produktkatalog ist vorübergehend nicht erreichbar. Bitte versuchen Sie es erneut.",
		"👋 Welcome! Tell me about your welding needs and we'll assemble a complete setup, starting with the power source.": "👋 Willkommen! Erzählen Sie mir von Ihren Schweißanforderungen und wir stellen eine komplette Ausrüstung zusammen, beginnend mit der Stromquelle.",
		"Your previous session expired, so we're starting fresh.":               "Ihre vorherige Sitzung ist abgelaufen, wir beginnen neu.",
		"⚠️ Something went wrong processing that turn. Nothing was changed; please try again.": "⚠️ Bei diesem Zug ist etwas schiefgelaufen. Es wurde nichts geändert; bitte versuchen Sie es erneut.",
		"📋 **Final configuration:**":                                            "📋 **Endgültige Konfiguration:**",
		"Say 'confirm' to complete it, or tell me what to change.":              "Sagen Sie 'confirm', um abzuschließen, oder sagen Sie mir, was geändert werden soll.",
		"✨ Configuration complete! Here is your final setup:":                   "✨ Konfiguration abgeschlossen! Hier ist Ihre endgültige Ausrüstung:",
		"Power Source":        "Stromquelle",
		"Wire Feeder":         "Drahtvorschub",
		"Cooling System":      "Kühlsystem",
		"Interconnector Cable": "Verbindungskabel",
		"Welding Torch":       "Schweißbrenner",
		"Accessory":           "Zubehör",
	},
	"pt": {
		"Select a power source":    "Selecione uma fonte de energia",
		"Select a feeder":          "Selecione um alimentador",
		"Select a cooler":          "Selecione um resfriador",
		"Select an interconnector": "Selecione um interconector",
		"Select a torch":           "Selecione uma tocha",
		"Select accessories":       "Selecione acessórios",
		"Tell me what you need: %s.":                                   "Diga-me o que precisa: %s.",
		"Naming a specific model also works.":                          "Também pode indicar um modelo específico.",
		"Or say 'skip' if this component is not needed.":               "Ou diga 'skip' se este componente não for necessário.",
		"Or say 'done' when you have all the accessories you need.":    "Ou diga 'done' quando tiver todos os acessórios de que precisa.",
		"⚠️ No %s options matched your requirements.":                  "⚠️ Nenhuma opção de %s corresponde aos seus requisitos.",
		"Try adjusting your requirements.":                             "Tente ajustar os seus requisitos.",
		"No exact match for your requirements; here is everything compatible:": "Sem correspondência exata com os seus requisitos; aqui está tudo o que é compatível:",
		"I found one match: **%[1]s** (GIN: %[2]s). Say 'yes' to select it.":    "Encontrei uma correspondência: **%[1]s** (GIN: %[2]s). Diga 'yes' para selecioná-la.",
		"I found %[1]d compatible %[2]s options:":                               "Encontrei %[1]d opções de %[2]s compatíveis:",
		"To select, reply with a number, a product name, or a GIN.":             "Para selecionar, responda com um número, um nome de produto ou um GIN.",
		"✅ Selected **%[1]s** (GIN: %[2]s) for %[3]s.":                          "✅ Selecionado **%[1]s** (GIN: %[2]s) para %[3]s.",
		"⏭️ Skipping %s selection.":                                             "⏭️ Ignorando a seleção de %s.",
		"⚠️ A power source is mandatory and cannot be skipped. Tell me your welding requirements or name a specific model.": "⚠️ A fonte de energia é obrigatória e não pode ser ignorada. Diga-me os seus requisitos de soldadura ou indique um modelo específico.",
		"The selected power source does not use: %s.":                           "A fonte de energia selecionada não utiliza: %s.",
		"⚠️ Only %[1]d of the required %[2]d components are selected. Add more before finalizing.": "⚠️ Apenas %[1]d dos %[2]d componentes necessários estão selecionados. Adicione mais antes de finalizar.",
		"I didn't catch that. Could you restate your requirements?":             "Não percebi. Pode reformular os seus requisitos?",
		"⚠️ The product catalogue is momentarily unavailable. Please try again.": "⚠️ O catálogo de produtos está momentaneamente indisponível. Tente novamente.",
		"👋 Welcome! Tell me about your welding needs and we'll assemble a complete setup, starting with the power source.": "👋 Bem-vindo! Fale-me das suas necessidades de soldadura e montaremos um equipamento completo, começando pela fonte de energia.",
		"Your previous session expired, so we're starting fresh.":               "A sua sessão anterior expirou, por isso vamos começar de novo.",
		"⚠️ Something went wrong processing that turn. Nothing was changed; please try again.": "⚠️ Algo correu mal ao processar este turno. Nada foi alterado; tente novamente.",
		"📋 **Final configuration:**":                                            "📋 **Configuração final:**",
		"Say 'confirm' to complete it, or tell me what to change.":              "Diga 'confirm' para concluir ou diga-me o que alterar.",
		"✨ Configuration complete! Here is your final setup:":                   "✨ Configuração completa! Aqui está o seu equipamento final:",
		"Power Source":        "Fonte de energia",
		"Wire Feeder":         "Alimentador de fio",
		"Cooling System":      "Sistema de refrigeração",
		"Interconnector Cable": "Cabo interconector",
		"Welding Torch":       "Tocha de soldadura",
		"Accessory":           "Acessório",
	},
	"it": {
		"Select a power source":    "Seleziona una fonte di alimentazione",
		"Select a feeder":          "Seleziona un alimentatore",
		"Select a cooler":          "Seleziona un refrigeratore",
		"Select an interconnector": "Seleziona un interconnettore",
		"Select a torch":           "Seleziona una torcia",
		"Select accessories":       "Seleziona accessori",
		"Tell me what you need: %s.":                                   "Dimmi cosa ti serve: %s.",
		"Naming a specific model also works.":                          "Puoi anche indicare un modello specifico.",
		"Or say 'skip' if this component is not needed.":               "Oppure di' 'skip' se questo componente non serve.",
		"Or say 'done' when you have all the accessories you need.":    "Oppure di' 'done' quando hai tutti gli accessori che ti servono.",
		"⚠️ No %s options matched your requirements.":                  "⚠️ Nessuna opzione di %s corrisponde ai tuoi requisiti.",
		"Try adjusting your requirements.":                             "Prova a modificare i tuoi requisiti.",
		"No exact match for your requirements; here is everything compatible:": "Nessuna corrispondenza esatta con i tuoi requisiti; ecco tutto ciò che è compatibile:",
		"I found one match: **%[1]s** (GIN: %[2]s). Say 'yes' to select it.":    "Ho trovato una corrispondenza: **%[1]s** (GIN: %[2]s). Di' 'yes' per selezionarla.",
		"I found %[1]d compatible %[2]s options:":                               "Ho trovato %[1]d opzioni di %[2]s compatibili:",
		"To select, reply with a number, a product name, or a GIN.":             "Per selezionare, rispondi con un numero, un nome di prodotto o un GIN.",
		"✅ Selected **%[1]s** (GIN: %[2]s) for %[3]s.":                          "✅ Selezionato **%[1]s** (GIN: %[2]s) per %[3]s.",
		"⏭️ Skipping %s selection.":                                             "⏭️ Salto la selezione di %s.",
		"⚠️ A power source is mandatory and cannot be skipped. Tell me your welding requirements or name a specific model.": "⚠️ La fonte di alimentazione è obbligatoria e non può essere saltata. Dimmi i tuoi requisiti di saldatura o indica un modello specifico.",
		"The selected power source does not use: %s.":                           "La fonte di alimentazione selezionata non utilizza: %s.",
		"⚠️ Only %[1]d of the required %[2]d components are selected. Add more before finalizing.": "⚠️ Sono selezionati solo %[1]d dei %[2]d componenti richiesti. Aggiungine altri prima di finalizzare.",
		"I didn't catch that. Could you restate your requirements?":             "Non ho capito. Potresti riformulare i tuoi requisiti?",
		"⚠️ The product catalogue is momentarily unavailable. Please try again.": "⚠️ Il catalogo prodotti è momentaneamente non disponibile. Riprova.",
		"👋 Welcome! Tell me about your welding needs and we'll assemble a complete setup, starting with the power source.": "👋 Benvenuto! Raccontami le tue esigenze di saldatura e assembleremo un'attrezzatura completa, partendo dalla fonte di alimentazione.",
		"Your previous session expired, so we're starting fresh.":               "La tua sessione precedente è scaduta, quindi ricominciamo da capo.",
		"⚠️ Something went wrong processing that turn. Nothing was changed; please try again.": "⚠️ Qualcosa è andato storto in questo turno. Non è stato modificato nulla; riprova.",
		"📋 **Final configuration:**":                                            "📋 **Configurazione finale:**",
		"Say 'confirm' to complete it, or tell me what to change.":              "Di' 'confirm' per completarla, oppure dimmi cosa cambiare.",
		"✨ Configuration complete! Here is your final setup:":                   "✨ Configurazione completata! Ecco la tua attrezzatura finale:",
		"Power Source":        "Fonte di alimentazione",
		"Wire Feeder":         "Alimentatore di filo",
		"Cooling System":      "Sistema di raffreddamento",
		"Interconnector Cable": "Cavo interconnettore",
		"Welding Torch":       "Torcia di saldatura",
		"Accessory":           "Accessorio",
	},
	"sv": {
		"Select a power source":    "Välj en strömkälla",
		"Select a feeder":          "Välj en matare",
		"Select a cooler":          "Välj en kylare",
		"Select an interconnector": "Välj en sammankoppling",
		"Select a torch":           "Välj en svetsbrännare",
		"Select accessories":       "Välj tillbehör",
		"Tell me what you need: %s.":                                   "Berätta vad du behöver: %s.",
		"Naming a specific model also works.":                          "Du kan också ange en specifik modell.",
		"Or say 'skip' if this component is not needed.":               "Eller säg 'skip' om komponenten inte behövs.",
		"Or say 'done' when you have all the accessories you need.":    "Eller säg 'done' när du har alla tillbehör du behöver.",
		"⚠️ No %s options matched your requirements.":                  "⚠️ Inga %s-alternativ matchade dina krav.",
		"Try adjusting your requirements.":                             "Prova att justera dina krav.",
		"No exact match for your requirements; here is everything compatible:": "Ingen exakt träff på dina krav; här är allt som är kompatibelt:",
		"I found one match: **%[1]s** (GIN: %[2]s). Say 'yes' to select it.":    "Jag hittade en träff: **%[1]s** (GIN: %[2]s). Säg 'yes' för att välja den.",
		"I found %[1]d compatible %[2]s options:":                               "Jag hittade %[1]d kompatibla %[2]s-alternativ:",
		"To select, reply with a number, a product name, or a GIN.":             "Svara med ett nummer, ett produktnamn eller ett GIN för att välja.",
		"✅ Selected **%[1]s** (GIN: %[2]s) for %[3]s.":                          "✅ Valde **%[1]s** (GIN: %[2]s) som %[3]s.",
		"⏭️ Skipping %s selection.":                                             "⏭️ Hoppar över valet av %s.",
		"⚠️ A power source is mandatory and cannot be skipped. Tell me your welding requirements or name a specific model.": "⚠️ En strömkälla är obligatorisk och kan inte hoppas över. Berätta om dina svetsbehov eller ange en specifik modell.",
		"The selected power source does not use: %s.":                           "Den valda strömkällan använder inte: %s.",
		"⚠️ Only %[1]d of the required %[2]d components are selected. Add more before finalizing.": "⚠️ Endast %[1]d av de %[2]d komponenter som krävs är valda. Lägg till fler innan du slutför.",
		"I didn't catch that. Could you restate your requirements?":             "Jag förstod inte. Kan du formulera om dina krav?",
		"⚠️ The product catalogue is momentarily unavailable. Please try again.": "⚠️ Produktkatalogen är tillfälligt otillgänglig. Försök igen.",
		"👋 Welcome! Tell me about your welding needs and we'll assemble a complete setup, starting with the power source.": "👋 Välkommen! Berätta om dina svetsbehov så sätter vi ihop en komplett utrustning, med strömkällan först.",
		"Your previous session expired, so we're starting fresh.":               "Din tidigare session har gått ut, så vi börjar om.",
		"⚠️ Something went wrong processing that turn. Nothing was changed; please try again.": "⚠️ Något gick fel under det här steget. Inget ändrades; försök igen.",
		"📋 **Final configuration:**":                                            "📋 **Slutlig konfiguration:**",
		"Say 'confirm' to complete it, or tell me what to change.":              "Säg 'confirm' för att slutföra, eller berätta vad som ska ändras.",
		"✨ Configuration complete! Here is your final setup:":                   "✨ Konfigurationen är klar! Här är din slutliga utrustning:",
		"Power Source":        "Strömkälla",
		"Wire Feeder":         "Trådmatare",
		"Cooling System":      "Kylsystem",
		"Interconnector Cable": "Sammankopplingskabel",
		"Welding Torch":       "Svetsbrännare",
		"Accessory":           "Tillbehör",
	},
	"fi": {
		"Select a power source":    "Valitse virtalähde",
		"Select a feeder":          "Valitse langansyöttölaite",
		"Select a cooler":          "Valitse jäähdytin",
		"Select an interconnector": "Valitse välikaapeli",
		"Select a torch":           "Valitse poltin",
		"Select accessories":       "Valitse lisävarusteet",
		"Tell me what you need: %s.":                                "Kerro mitä tarvitset: %s.",
		"Or say 'skip' if this component is not needed.":            "Tai sano 'skip', jos tätä komponenttia ei tarvita.",
		"Or say 'done' when you have all the accessories you need.": "Tai sano 'done', kun sinulla on kaikki tarvitsemasi lisävarusteet.",
		"I found one match: **%[1]s** (GIN: %[2]s). Say 'yes' to select it.": "Löysin yhden osuman: **%[1]s** (GIN: %[2]s). Sano 'yes' valitaksesi sen.",
		"I found %[1]d compatible %[2]s options:":                            "Löysin %[1]d yhteensopivaa %[2]s-vaihtoehtoa:",
		"To select, reply with a number, a product name, or a GIN.":          "Valitse vastaamalla numerolla, tuotenimellä tai GIN-koodilla.",
		"✅ Selected **%[1]s** (GIN: %[2]s) for %[3]s.":                       "✅ Valittu **%[1]s** (GIN: %[2]s) kohtaan %[3]s.",
		"⏭️ Skipping %s selection.":                                          "⏭️ Ohitetaan kohdan %s valinta.",
		"⚠️ A power source is mandatory and cannot be skipped. Tell me your welding requirements or name a specific model.": "⚠️ Virtalähde on pakollinen eikä sitä voi ohittaa. Kerro hitsausvaatimuksesi tai nimeä tietty malli.",
		"⚠️ Only %[1]d of the required %[2]d components are selected. Add more before finalizing.": "⚠️ Vain %[1]d vaadituista %[2]d komponentista on valittu. Lisää komponentteja ennen viimeistelyä.",
		"I didn't catch that. Could you restate your requirements?":             "En ymmärtänyt. Voisitko muotoilla vaatimuksesi uudelleen?",
		"⚠️ The product catalogue is momentarily unavailable. Please try again.": "⚠️ Tuoteluettelo ei ole juuri nyt käytettävissä. Yritä uudelleen.",
		"👋 Welcome! Tell me about your welding needs and we'll assemble a complete setup, starting with the power source.": "👋 Tervetuloa! Kerro hitsaustarpeistasi, niin kokoamme täydellisen laitteiston virtalähteestä alkaen.",
		"✨ Configuration complete! Here is your final setup:":                   "✨ Kokoonpano valmis! Tässä on lopullinen laitteistosi:",
		"Power Source":        "Virtalähde",
		"Wire Feeder":         "Langansyöttölaite",
		"Cooling System":      "Jäähdytysjärjestelmä",
		"Interconnector Cable": "Välikaapeli",
		"Welding Torch":       "Hitsauspoltin",
		"Accessory":           "Lisävaruste",
	},
	"no": {
		"Select a power source":    "Velg en strømkilde",
		"Select a feeder":          "Velg en trådmater",
		"Select a cooler":          "Velg en kjøler",
		"Select an interconnector": "Velg en mellomkabel",
		"Select a torch":           "Velg en sveisebrenner",
		"Select accessories":       "Velg tilbehør",
		"Tell me what you need: %s.":                                "Fortell meg hva du trenger: %s.",
		"Or say 'skip' if this component is not needed.":            "Eller si 'skip' hvis denne komponenten ikke trengs.",
		"Or say 'done' when you have all the accessories you need.": "Eller si 'done' når du har alt tilbehøret du trenger.",
		"I found one match: **%[1]s** (GIN: %[2]s). Say 'yes' to select it.": "Jeg fant ett treff: **%[1]s** (GIN: %[2]s). Si 'yes' for å velge det.",
		"I found %[1]d compatible %[2]s options:":                            "Jeg fant %[1]d kompatible %[2]s-alternativer:",
		"To select, reply with a number, a product name, or a GIN.":          "Svar med et nummer, et produktnavn eller en GIN for å velge.",
		"✅ Selected **%[1]s** (GIN: %[2]s) for %[3]s.":                       "✅ Valgte **%[1]s** (GIN: %[2]s) som %[3]s.",
		"⏭️ Skipping %s selection.":                                          "⏭️ Hopper over valg av %s.",
		"⚠️ A power source is mandatory and cannot be skipped. Tell me your welding requirements or name a specific model.": "⚠️ En strømkilde er obligatorisk og kan ikke hoppes over. Fortell meg om sveisebehovene dine eller navngi en bestemt modell.",
		"⚠️ Only %[1]d of the required %[2]d components are selected. Add more before finalizing.": "⚠️ Bare %[1]d av de %[2]d nødvendige komponentene er valgt. Legg til flere før du fullfører.",
		"I didn't catch that. Could you restate your requirements?":             "Jeg forsto ikke. Kan du omformulere kravene dine?",
		"⚠️ The product catalogue is momentarily unavailable. Please try again.": "⚠️ Produktkatalogen er midlertidig utilgjengelig. Prøv igjen.",
		"👋 Welcome! Tell me about your welding needs and we'll assemble a complete setup, starting with the power source.": "👋 Velkommen! Fortell meg om sveisebehovene dine, så setter vi sammen et komplett utstyr, med strømkilden først.",
		"✨ Configuration complete! Here is your final setup:":                   "✨ Konfigurasjonen er fullført! Her er det endelige utstyret ditt:",
		"Power Source":        "Strømkilde",
		"Wire Feeder":         "Trådmater",
		"Cooling System":      "Kjølesystem",
		"Interconnector Cable": "Mellomkabel",
		"Welding Torch":       "Sveisebrenner",
		"Accessory":           "Tilbehør",
	},
	"da": {
		"Select a power source":    "Vælg en strømkilde",
		"Select a feeder":          "Vælg en trådfremfører",
		"Select a cooler":          "Vælg en køler",
		"Select an interconnector": "Vælg et mellemkabel",
		"Select a torch":           "Vælg en svejsebrænder",
		"Select accessories":       "Vælg tilbehør",
		"Tell me what you need: %s.":                                "Fortæl mig, hvad du har brug for: %s.",
		"Or say 'skip' if this component is not needed.":            "Eller sig 'skip', hvis denne komponent ikke er nødvendig.",
		"Or say 'done' when you have all the accessories you need.": "Eller sig 'done', når du har alt det tilbehør, du skal bruge.",
		"I found one match: **%[1]s** (GIN: %[2]s). Say 'yes' to select it.": "Jeg fandt ét match: **%[1]s** (GIN: %[2]s). Sig 'yes' for at vælge det.",
		"I found %[1]d compatible %[2]s options:":                            "Jeg fandt %[1]d kompatible %[2]s-muligheder:",
		"To select, reply with a number, a product name, or a GIN.":          "Svar med et nummer, et produktnavn eller en GIN for at vælge.",
		"✅ Selected **%[1]s** (GIN: %[2]s) for %[3]s.":                       "✅ Valgte **%[1]s** (GIN: %[2]s) som %[3]s.",
		"⏭️ Skipping %s selection.":                                          "⏭️ Springer valget af %s over.",
		"⚠️ A power source is mandatory and cannot be skipped. Tell me your welding requirements or name a specific model.": "⚠️ En strømkilde er obligatorisk og kan ikke springes over. Fortæl mig om dine svejsebehov, eller nævn en bestemt model.",
		"⚠️ Only %[1]d of the required %[2]d components are selected. Add more before finalizing.": "⚠️ Kun %[1]d af de %[2]d påkrævede komponenter er valgt. Tilføj flere, før du afslutter.",
		"I didn't catch that. Could you restate your requirements?":             "Det forstod jeg ikke. Kan du omformulere dine krav?",
		"⚠️ The product catalogue is momentarily unavailable. Please try again.": "⚠️ Produktkataloget er midlertidigt utilgængeligt. Prøv igen.",
		"👋 Welcome! Tell me about your welding needs and we'll assemble a complete setup, starting with the power source.": "👋 Velkommen! Fortæl mig om dine svejsebehov, så sammensætter vi et komplet udstyr, med strømkilden først.",
		"✨ Configuration complete! Here is your final setup:":                   "✨ Konfigurationen er færdig! Her er dit endelige udstyr:",
		"Power Source":        "Strømkilde",
		"Wire Feeder":         "Trådfremfører",
		"Cooling System":      "Kølesystem",
		"Interconnector Cable": "Mellemkabel",
		"Welding Torch":       "Svejsebrænder",
		"Accessory":           "Tilbehør",
	},
	"nl": {
		"Select a power source":    "Selecteer een stroombron",
		"Select a feeder":          "Selecteer een draadaanvoer",
		"Select a cooler":          "Selecteer een koeler",
		"Select an interconnector": "Selecteer een tussenkabel",
		"Select a torch":           "Selecteer een lastoorts",
		"Select accessories":       "Selecteer accessoires",
		"Tell me what you need: %s.":                                "Vertel me wat u nodig hebt: %s.",
		"Or say 'skip' if this component is not needed.":            "Of zeg 'skip' als dit onderdeel niet nodig is.",
		"Or say 'done' when you have all the accessories you need.": "Of zeg 'done' wanneer u alle accessoires hebt die u nodig hebt.",
		"I found one match: **%[1]s** (GIN: %[2]s). Say 'yes' to select it.": "Ik heb één match gevonden: **%[1]s** (GIN: %[2]s). Zeg 'yes' om deze te selecteren.",
		"I found %[1]d compatible %[2]s options:":                            "Ik heb %[1]d compatibele %[2]s-opties gevonden:",
		"To select, reply with a number, a product name, or a GIN.":          "Antwoord met een nummer, een productnaam of een GIN om te selecteren.",
		"✅ Selected **%[1]s** (GIN: %[2]s) for %[3]s.":                       "✅ **%[1]s** (GIN: %[2]s) geselecteerd voor %[3]s.",
		"⏭️ Skipping %s selection.":                                          "⏭️ Selectie van %s wordt overgeslagen.",
		"⚠️ A power source is mandatory and cannot be skipped. Tell me your welding requirements or name a specific model.": "⚠️ Een stroombron is verplicht en kan niet worden overgeslagen. Vertel me uw laseisen of noem een specifiek model.",
		"⚠️ Only %[1]d of the required %[2]d components are selected. Add more before finalizing.": "⚠️ Slechts %[1]d van de %[2]d vereiste onderdelen zijn geselecteerd. Voeg er meer toe voordat u afrondt.",
		"I didn't catch that. Could you restate your requirements?":             "Dat begreep ik niet. Kunt u uw eisen anders formuleren?",
		"⚠️ The product catalogue is momentarily unavailable. Please try again.": "⚠️ De productcatalogus is tijdelijk niet beschikbaar. Probeer het opnieuw.",
		"👋 Welcome! Tell me about your welding needs and we'll assemble a complete setup, starting with the power source.": "👋 Welkom! Vertel me over uw lasbehoeften, dan stellen we een complete uitrusting samen, te beginnen met de stroombron.",
		"✨ Configuration complete! Here is your final setup:":                   "✨ Configuratie voltooid! Hier is uw definitieve uitrusting:",
		"Power Source":        "Stroombron",
		"Wire Feeder":         "Draadaanvoer",
		"Cooling System":      "Koelsysteem",
		"Interconnector Cable": "Tussenkabel",
		"Welding Torch":       "Lastoorts",
		"Accessory":           "Accessoire",
	},
	"pl": {
		"Select a power source":    "Wybierz źródło prądu",
		"Select a feeder":          "Wybierz podajnik drutu",
		"Select a cooler":          "Wybierz chłodnicę",
		"Select an interconnector": "Wybierz przewód pośredni",
		"Select a torch":           "Wybierz uchwyt spawalniczy",
		"Select accessories":       "Wybierz akcesoria",
		"Tell me what you need: %s.":                                "Powiedz mi, czego potrzebujesz: %s.",
		"Or say 'skip' if this component is not needed.":            "Lub powiedz 'skip', jeśli ten element nie jest potrzebny.",
		"Or say 'done' when you have all the accessories you need.": "Lub powiedz 'done', gdy masz już wszystkie potrzebne akcesoria.",
		"I found one match: **%[1]s** (GIN: %[2]s). Say 'yes' to select it.": "Znalazłem jedno dopasowanie: **%[1]s** (GIN: %[2]s). Powiedz 'yes', aby je wybrać.",
		"I found %[1]d compatible %[2]s options:":                            "Znalazłem %[1]d zgodnych opcji dla %[2]s:",
		"To select, reply with a number, a product name, or a GIN.":          "Aby wybrać, odpowiedz numerem, nazwą produktu lub kodem GIN.",
		"✅ Selected **%[1]s** (GIN: %[2]s) for %[3]s.":                       "✅ Wybrano **%[1]s** (GIN: %[2]s) jako %[3]s.",
		"⏭️ Skipping %s selection.":                                          "⏭️ Pomijam wybór: %s.",
		"⚠️ A power source is mandatory and cannot be skipped. Tell me your welding requirements or name a specific model.": "⚠️ Źródło prądu jest obowiązkowe i nie można go pominąć. Podaj swoje wymagania spawalnicze lub nazwę konkretnego modelu.",
		"⚠️ Only %[1]d of the required %[2]d components are selected. Add more before finalizing.": "⚠️ Wybrano tylko %[1]d z %[2]d wymaganych elementów. Dodaj więcej przed zakończeniem.",
		"I didn't catch that. Could you restate your requirements?":             "Nie zrozumiałem. Czy możesz inaczej sformułować swoje wymagania?",
		"⚠️ The product catalogue is momentarily unavailable. Please try again.": "⚠️ Katalog produktów jest chwilowo niedostępny. Spróbuj ponownie.",
		"👋 Welcome! Tell me about your welding needs and we'll assemble a complete setup, starting with the power source.": "👋 Witamy! Opowiedz o swoich potrzebach spawalniczych, a złożymy kompletny zestaw, zaczynając od źródła prądu.",
		"✨ Configuration complete! Here is your final setup:":                   "✨ Konfiguracja ukończona! Oto Twój ostateczny zestaw:",
		"Power Source":        "Źródło prądu",
		"Wire Feeder":         "Podajnik drutu",
		"Cooling System":      "Układ chłodzenia",
		"Interconnector Cable": "Przewód pośredni",
		"Welding Torch":       "Uchwyt spawalniczy",
		"Accessory":           "Akcesorium",
	},
}
