package services

import (
	"strings"

	"github.com/ersonp/feather/internal/domain/entities"
)

// KeywordFacts maps a subject-type keyword (e.g. "woodpecker") to facts that
// hold for every subject whose name contains it as a whole word.
type KeywordFacts struct {
	Keyword string
	Facts   []string
}

// KeywordImage maps a subject-type keyword to an always-available photo.
type KeywordImage struct {
	Keyword string
	URL     string
}

// KeywordSubjects maps a subject-type keyword to related subjects.
type KeywordSubjects struct {
	Keyword  string
	Subjects []string
}

// KeywordPhrase maps a subject-type keyword to a short category phrase.
type KeywordPhrase struct {
	Keyword string
	Phrase  string
}

// CuratedData holds the hand-verified tables the pipeline falls back on.
// Keyword tables are ordered; the first matching keyword wins.
type CuratedData struct {
	// Subjects is the pre-vetted list with known media and valid pages.
	Subjects []string
	// SafeSubjects is the always-safe subset used under exhaustion.
	SafeSubjects []string
	// AlternateNames maps a normalized name to scientific or foreign names.
	AlternateNames map[string][]string
	// Facts maps a normalized name to exactly three vetted facts.
	Facts        map[string][]string
	KeywordFacts []KeywordFacts
	// GenericFacts is the domain-generic triple used when nothing else matches.
	// It must not contain template phrases rejected by the genericity gate.
	GenericFacts  []string
	Similar       []KeywordSubjects
	DefaultImages []KeywordImage
	// GroupNames are family-level names that are not concrete species.
	GroupNames []string
	// ExoticMarkers flag names outside the configured region.
	ExoticMarkers []string
	TypePhrases   []KeywordPhrase
}

// IsCurated reports whether the name is in the curated list.
func (c *CuratedData) IsCurated(name string) bool {
	key := entities.NormalizeName(name)
	for _, s := range c.Subjects {
		if entities.NormalizeName(s) == key {
			return true
		}
	}
	return false
}

// IsGroupName reports whether the name is a bare family-level name such as "Tit".
func (c *CuratedData) IsGroupName(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, g := range c.GroupNames {
		if lower == g || lower == g+"s" {
			return true
		}
	}
	return false
}

// IsExotic reports whether the name carries an out-of-region marker.
func (c *CuratedData) IsExotic(name string) bool {
	lower := strings.ToLower(name)
	for _, m := range c.ExoticMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Alternates returns alternate names for a subject.
func (c *CuratedData) Alternates(name string) []string {
	return c.AlternateNames[entities.NormalizeName(name)]
}

// FallbackFacts returns the curated facts for a subject: exact key first,
// then keyword match, then the generic triple.
func (c *CuratedData) FallbackFacts(name string) []string {
	if facts, ok := c.Facts[entities.NormalizeName(name)]; ok {
		return facts
	}
	for _, kf := range c.KeywordFacts {
		if containsWord(name, kf.Keyword) {
			return kf.Facts
		}
	}
	return c.GenericFacts
}

// SimilarSubjects returns related subjects for the first matching keyword.
func (c *CuratedData) SimilarSubjects(name string) []string {
	for _, s := range c.Similar {
		if containsWord(name, s.Keyword) {
			return s.Subjects
		}
	}
	return nil
}

// DefaultImage returns the curated photo for the first matching keyword.
func (c *CuratedData) DefaultImage(name string) string {
	for _, d := range c.DefaultImages {
		if containsWord(name, d.Keyword) {
			return d.URL
		}
	}
	return ""
}

// TypePhrase returns a category phrase such as "small songbird".
func (c *CuratedData) TypePhrase(name string) string {
	for _, p := range c.TypePhrases {
		if containsWord(name, p.Keyword) {
			return p.Phrase
		}
	}
	return "bird"
}

// DefaultCuratedData returns the built-in tables for European birds.
func DefaultCuratedData() *CuratedData {
	return &CuratedData{
		Subjects: []string{
			"Great Tit", "Eurasian Tree Sparrow", "Rock Dove", "Mallard",
			"Common Starling", "Eurasian Magpie", "Hooded Crow", "Black-headed Gull",
			"European Robin", "Fieldfare", "Song Thrush", "Common Swift",
			"Eurasian Blue Tit", "Eurasian Nuthatch", "Eurasian Bullfinch",
			"Long-eared Owl", "Great Spotted Woodpecker", "European Green Woodpecker",
			"Eurasian Siskin", "European Goldfinch", "Common Chaffinch", "Common Linnet",
			"Bluethroat", "Yellowhammer", "Common Redpoll", "Bohemian Waxwing",
			"Northern Lapwing", "Common Snipe", "Eurasian Woodcock", "Common Pochard",
			"Tufted Duck", "Common Goldeneye", "Eurasian Coot", "Great Crested Grebe",
			"Gadwall", "Northern Pintail", "Eurasian Wigeon",
		},
		SafeSubjects: []string{
			"Great Tit", "Eurasian Tree Sparrow", "Rock Dove", "Mallard",
			"Common Starling", "Eurasian Magpie", "Hooded Crow", "Black-headed Gull",
		},
		AlternateNames: map[string][]string{
			"Great Tit":                 {"Parus major"},
			"Eurasian Tree Sparrow":     {"Passer montanus"},
			"Eurasian Bullfinch":        {"Pyrrhula pyrrhula"},
			"Rock Dove":                 {"Columba livia"},
			"Mallard":                   {"Anas platyrhynchos"},
			"Common Swift":              {"Apus apus"},
			"Common Starling":           {"Sturnus vulgaris"},
			"Eurasian Blue Tit":         {"Cyanistes caeruleus"},
			"Eurasian Nuthatch":         {"Sitta europaea"},
			"European Robin":            {"Erithacus rubecula"},
			"Fieldfare":                 {"Turdus pilaris"},
			"Song Thrush":               {"Turdus philomelos"},
			"Common Redpoll":            {"Acanthis flammea"},
			"Bohemian Waxwing":          {"Bombycilla garrulus"},
			"Yellowhammer":              {"Emberiza citrinella"},
			"Goldcrest":                 {"Regulus regulus"},
			"Eurasian Treecreeper":      {"Certhia familiaris"},
			"Long-eared Owl":            {"Asio otus"},
			"Great Spotted Woodpecker":  {"Dendrocopos major"},
			"Hooded Crow":               {"Corvus cornix"},
			"Eurasian Magpie":           {"Pica pica"},
			"Black-headed Gull":         {"Chroicocephalus ridibundus", "Larus ridibundus"},
			"European Green Woodpecker": {"Picus viridis"},
			"Coal Tit":                  {"Periparus ater"},
			"Eurasian Siskin":           {"Spinus spinus"},
			"European Goldfinch":        {"Carduelis carduelis"},
			"Common Linnet":             {"Linaria cannabina"},
			"Redwing":                   {"Turdus iliacus"},
			"Willow Tit":                {"Poecile montanus"},
			"Common Chaffinch":          {"Fringilla coelebs"},
			"Common Chiffchaff":         {"Phylloscopus collybita"},
			"Bluethroat":                {"Luscinia svecica"},
			"Common Goldeneye":          {"Bucephala clangula"},
			"Red-necked Grebe":          {"Podiceps grisegena"},
			"Great Grey Shrike":         {"Lanius excubitor"},
			"Hawfinch":                  {"Coccothraustes coccothraustes"},
			"Common Kestrel":            {"Falco tinnunculus"},
			"Common Crane":              {"Grus grus"},
			"Eurasian Oystercatcher":    {"Haematopus ostralegus"},
			"Eurasian Woodcock":         {"Scolopax rusticola"},
			"Common Snipe":              {"Gallinago gallinago"},
			"Northern Lapwing":          {"Vanellus vanellus"},
			"Common Redshank":           {"Tringa totanus"},
			"Common Greenshank":         {"Tringa nebularia"},
			"Wood Sandpiper":            {"Tringa glareola"},
			"Common Pochard":            {"Aythya ferina"},
			"Tufted Duck":               {"Aythya fuligula"},
			"Gadwall":                   {"Mareca strepera"},
			"Northern Pintail":          {"Anas acuta"},
			"Eurasian Wigeon":           {"Mareca penelope"},
			"Northern Shoveler":         {"Spatula clypeata"},
			"Eurasian Coot":             {"Fulica atra"},
			"Great Crested Grebe":       {"Podiceps cristatus"},
		},
		Facts: map[string][]string{
			"Great Tit": {
				"Feeds on insects and seeds and is a regular visitor to winter feeders.",
				"Males and females look alike, although males are slightly larger.",
				"Nests in tree holes and readily takes to garden nest boxes.",
			},
			"Eurasian Tree Sparrow": {
				"Prefers farmland, hedgerows and woodland edges to city centres.",
				"A flocking bird that often feeds together on the ground.",
				"Both sexes share the chestnut crown and black cheek spot.",
			},
			"Song Thrush": {
				"Known for a varied song in which each phrase is repeated two or three times.",
				"Smashes snail shells against a favourite stone known as an anvil.",
				"Northern populations migrate south and west for the winter.",
			},
			"Mallard": {
				"The most widespread duck of the Northern Hemisphere.",
				"Breeding males have a glossy green head while females are mottled brown.",
				"Common on park ponds, rivers and lakes in towns and cities.",
			},
			"Rock Dove": {
				"The wild ancestor of the feral pigeon, domesticated over 5000 years ago.",
				"Has excellent spatial memory and a strong homing ability.",
				"Can reach speeds close to 100 km/h in level flight.",
			},
			"Eurasian Woodcock": {
				"Males perform display flights called roding at dusk and dawn in spring.",
				"Uses its long sensitive bill to probe soft soil for earthworms.",
				"Its mottled plumage makes it almost invisible among fallen leaves.",
			},
			"Hawfinch": {
				"Its massive bill can crack cherry stones with a force of over 40 kilograms.",
				"Males are warm orange-brown with a grey nape and black bib.",
				"Prefers mature deciduous woodland where it feeds on tree seeds.",
			},
			"Red-necked Grebe": {
				"Named for the chestnut neck it wears in breeding plumage.",
				"An expert diver that can stay underwater for around thirty seconds.",
				"Builds floating nests from water plants on quiet lakes.",
			},
		},
		KeywordFacts: []KeywordFacts{
			{Keyword: "woodpecker", Facts: []string{
				"Drums on dead branches to mark territory and attract a mate.",
				"Stiff tail feathers act as a prop while it climbs tree trunks.",
				"A long barbed tongue helps it extract larvae from wood.",
			}},
			{Keyword: "owl", Facts: []string{
				"Soft fringed flight feathers allow it to fly almost silently.",
				"Asymmetric ear openings let it pinpoint prey by sound alone.",
				"Swallows small prey whole and coughs up pellets of fur and bone.",
			}},
			{Keyword: "tit", Facts: []string{
				"Often joins mixed flocks with other small birds in winter.",
				"Caches seeds in bark crevices to eat during cold spells.",
				"Nests in tree cavities and takes readily to nest boxes.",
			}},
			{Keyword: "duck", Facts: []string{
				"Waterproofs its plumage with oil from a gland near the tail.",
				"Moults all flight feathers at once and is briefly flightless in summer.",
				"Ducklings leave the nest within a day of hatching.",
			}},
			{Keyword: "gull", Facts: []string{
				"Drinks seawater and excretes the salt through glands above the eyes.",
				"Follows ploughs and fishing boats for easy food.",
				"Breeds in noisy colonies on islands, marshes and rooftops.",
			}},
			{Keyword: "thrush", Facts: []string{
				"Forages on lawns by running a few steps and pausing to listen.",
				"Sings from high perches, most strongly at dawn and dusk.",
				"Eats large quantities of berries in autumn and winter.",
			}},
		},
		GenericFacts: []string{
			"Birds are the only living animals with feathers.",
			"Hollow, air-filled bones keep most birds light enough to fly.",
			"Many species use the Earth's magnetic field to navigate on migration.",
		},
		Similar: []KeywordSubjects{
			{Keyword: "owl", Subjects: []string{"Long-eared Owl", "Tawny Owl", "Little Owl", "Barn Owl"}},
			{Keyword: "falcon", Subjects: []string{"Common Kestrel", "Eurasian Hobby", "Merlin", "Peregrine Falcon"}},
			{Keyword: "shrike", Subjects: []string{"Red-backed Shrike", "Great Grey Shrike", "Lesser Grey Shrike"}},
			{Keyword: "grebe", Subjects: []string{"Great Crested Grebe", "Red-necked Grebe", "Little Grebe"}},
			{Keyword: "flycatcher", Subjects: []string{"European Pied Flycatcher", "Spotted Flycatcher", "Red-breasted Flycatcher"}},
			{Keyword: "warbler", Subjects: []string{"Common Chiffchaff", "Willow Warbler", "Wood Warbler"}},
			{Keyword: "bunting", Subjects: []string{"Yellowhammer", "Ortolan Bunting", "Common Reed Bunting"}},
			{Keyword: "whitethroat", Subjects: []string{"Common Whitethroat", "Garden Warbler", "Eurasian Blackcap"}},
			{Keyword: "finch", Subjects: []string{"Common Chaffinch", "Brambling", "European Greenfinch"}},
			{Keyword: "starling", Subjects: []string{"Common Starling", "Rosy Starling"}},
		},
		DefaultImages: []KeywordImage{
			{Keyword: "tit", URL: "https://upload.wikimedia.org/wikipedia/commons/thumb/7/7e/Parus_major_-Hampshire%2C_England-8.jpg/1024px-Parus_major_-Hampshire%2C_England-8.jpg"},
			{Keyword: "sparrow", URL: "https://upload.wikimedia.org/wikipedia/commons/thumb/9/9b/Passer_montanus_1_%28Marek_Szczepanek%29.jpg/1024px-Passer_montanus_1_%28Marek_Szczepanek%29.jpg"},
			{Keyword: "dove", URL: "https://upload.wikimedia.org/wikipedia/commons/thumb/5/5e/Columba_livia_%28Warszawa%29.jpg/1024px-Columba_livia_%28Warszawa%29.jpg"},
			{Keyword: "duck", URL: "https://upload.wikimedia.org/wikipedia/commons/thumb/5/59/Anas_platyrhynchos_male_female_quadrat.jpg/1024px-Anas_platyrhynchos_male_female_quadrat.jpg"},
			{Keyword: "thrush", URL: "https://upload.wikimedia.org/wikipedia/commons/thumb/0/08/Song_Thrush_Turdus_philomelos.jpg/1024px-Song_Thrush_Turdus_philomelos.jpg"},
			{Keyword: "owl", URL: "https://upload.wikimedia.org/wikipedia/commons/thumb/8/8d/Bubo_bubo_Wroc%C5%82aw_ZOO_1.jpg/1024px-Bubo_bubo_Wroc%C5%82aw_ZOO_1.jpg"},
			{Keyword: "woodpecker", URL: "https://upload.wikimedia.org/wikipedia/commons/thumb/6/6e/Dendrocopos_major_2_%28Marek_Szczepanek%29.jpg/1024px-Dendrocopos_major_2_%28Marek_Szczepanek%29.jpg"},
			{Keyword: "bullfinch", URL: "https://upload.wikimedia.org/wikipedia/commons/thumb/9/95/Pyrrhula_pyrrhula_-Hokkaido%2C_Japan-8.jpg/1024px-Pyrrhula_pyrrhula_-Hokkaido%2C_Japan-8.jpg"},
		},
		GroupNames: []string{
			"tit", "sparrow", "finch", "thrush", "duck", "dove", "pigeon", "owl",
			"woodpecker", "crow", "falcon", "eagle", "gull", "swallow", "nightingale",
			"lark", "bird", "warbler", "bunting", "hawk",
		},
		ExoticMarkers: []string{
			"amazon", "macaw", "cockatoo", "lorikeet", "parrot", "toucan", "hummingbird",
			"hornbill", "bird-of-paradise", "bird of paradise", "tropical", "equatorial",
			"african", "south american", "australian", "hawaiian", "solomon", "papuan",
			"madagascar", "indonesian", "philippine", "caribbean",
		},
		TypePhrases: []KeywordPhrase{
			{Keyword: "tit", Phrase: "small songbird"},
			{Keyword: "sparrow", Phrase: "small bird often seen in towns"},
			{Keyword: "dove", Phrase: "bird well adapted to city life"},
			{Keyword: "owl", Phrase: "nocturnal bird of prey"},
			{Keyword: "woodpecker", Phrase: "bird that drums on trees"},
			{Keyword: "bullfinch", Phrase: "bird whose males have a bright red breast"},
			{Keyword: "duck", Phrase: "waterbird"},
			{Keyword: "thrush", Phrase: "songbird of the thrush family"},
		},
	}
}
