package images

import (
	"context"
	"strings"
)

// curatedEntry maps a gift category to hand-picked, known-good photo URLs.
// Entries are matched in declaration order so more specific categories must
// come before broader ones.
type curatedEntry struct {
	category string
	keywords []string
	urls     []string
}

var curatedEntries = []curatedEntry{
	{
		category: "headphones",
		keywords: []string{"headphones", "earbuds", "earphones", "airpods", "headset"},
		urls: []string{
			"https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1484704849700-f032a568e944?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1583394838336-acd977736f90?w=400&h=400&fit=crop",
		},
	},
	{
		category: "watch",
		keywords: []string{"watch", "smartwatch", "timepiece"},
		urls: []string{
			"https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1522312346375-d1a52e2b99b3?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1524805444758-089113d48a6d?w=400&h=400&fit=crop",
		},
	},
	{
		category: "book",
		keywords: []string{"book", "novel", "journal", "notebook", "diary", "reading"},
		urls: []string{
			"https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1512820790803-83ca734da794?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=400&h=400&fit=crop",
		},
	},
	{
		category: "coffee",
		keywords: []string{"coffee", "espresso", "mug", "brewer", "french press"},
		urls: []string{
			"https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1514432324607-a09d9b4aefdd?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1461023058943-07fcbe16d735?w=400&h=400&fit=crop",
		},
	},
	{
		category: "tea",
		keywords: []string{"tea", "teapot", "matcha", "chai"},
		urls: []string{
			"https://images.unsplash.com/photo-1576092768241-dec231879fc3?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1564890369478-c89ca6d9cde9?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1597318181409-cf64d0b5d8a2?w=400&h=400&fit=crop",
		},
	},
	{
		category: "candle",
		keywords: []string{"candle", "scented", "aromatherapy", "diffuser", "fragrance"},
		urls: []string{
			"https://images.unsplash.com/photo-1602874801006-e26c4c5b5e8a?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1603006905003-be475563bc59?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1608571423902-eed4a5ad8108?w=400&h=400&fit=crop",
		},
	},
	{
		category: "plant",
		keywords: []string{"plant", "succulent", "planter", "bonsai", "garden", "terrarium"},
		urls: []string{
			"https://images.unsplash.com/photo-1485955900006-10f4d324d411?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1463320726281-696a485928c7?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1459156212016-c812468e2115?w=400&h=400&fit=crop",
		},
	},
	{
		category: "chocolate",
		keywords: []string{"chocolate", "candy", "sweets", "truffle", "dessert"},
		urls: []string{
			"https://images.unsplash.com/photo-1549007994-cb92caebd54b?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1511381939415-e44015466834?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1606312619070-d48b4c652a52?w=400&h=400&fit=crop",
		},
	},
	{
		category: "jewelry",
		keywords: []string{"jewelry", "jewellery", "necklace", "bracelet", "earrings", "ring", "pendant"},
		urls: []string{
			"https://images.unsplash.com/photo-1515562141207-7a88fb7ce338?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1535632066927-ab7c9ab60908?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1506630448388-4e683c67ddb0?w=400&h=400&fit=crop",
		},
	},
	{
		category: "perfume",
		keywords: []string{"perfume", "cologne", "eau de"},
		urls: []string{
			"https://images.unsplash.com/photo-1541643600914-78b084683601?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1592945403244-b3fbafd7f539?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1587017539504-67cfbddac569?w=400&h=400&fit=crop",
		},
	},
	{
		category: "speaker",
		keywords: []string{"speaker", "bluetooth speaker", "soundbar", "audio"},
		urls: []string{
			"https://images.unsplash.com/photo-1608043152269-423dbba4e7e1?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1545454675-3531b543be5d?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1558537348-c0f8e733989d?w=400&h=400&fit=crop",
		},
	},
	{
		category: "wellness",
		keywords: []string{"spa", "wellness", "massage", "skincare", "self-care", "bath"},
		urls: []string{
			"https://images.unsplash.com/photo-1544161515-4ab6ce6db874?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1570172619644-dfd03ed5d881?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1540555700478-4be289fbecef?w=400&h=400&fit=crop",
		},
	},
	{
		category: "art",
		keywords: []string{"art", "painting", "sketch", "craft", "drawing", "watercolor"},
		urls: []string{
			"https://images.unsplash.com/photo-1513364776144-60967b0f800f?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1460661419201-fd4cecdf8a8b?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1452860606245-08befc0ff44b?w=400&h=400&fit=crop",
		},
	},
	{
		category: "kitchen",
		keywords: []string{"kitchen", "cooking", "cookware", "baking", "chef", "knife"},
		urls: []string{
			"https://images.unsplash.com/photo-1556911220-bff31c812dba?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1590794056226-79ef3a8147e1?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1466637574441-749b8f19452f?w=400&h=400&fit=crop",
		},
	},
	{
		category: "travel",
		keywords: []string{"travel", "luggage", "backpack", "suitcase", "passport"},
		urls: []string{
			"https://images.unsplash.com/photo-1553531384-cc64ac80f931?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1565026057447-bc90a3dceb87?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1488646953014-85cb44e25828?w=400&h=400&fit=crop",
		},
	},
	{
		category: "game",
		keywords: []string{"game", "gaming", "board game", "puzzle", "console", "lego"},
		urls: []string{
			"https://images.unsplash.com/photo-1606144042614-b2417e99c4e3?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1610890716171-6b1bb98ffd09?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1611996575749-79a3a250f948?w=400&h=400&fit=crop",
		},
	},
	{
		category: "scarf",
		keywords: []string{"scarf", "sweater", "gloves", "blanket", "cozy", "wool"},
		urls: []string{
			"https://images.unsplash.com/photo-1457545195570-67f207084966?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1520903920243-00d872a2d1c9?w=400&h=400&fit=crop",
			"https://images.unsplash.com/photo-1434389677669-e08b4cac3105?w=400&h=400&fit=crop",
		},
	},
}

// genericGiftURLs back the curated tier when nothing category-specific
// matches: wrapped presents photograph well for any gift.
var genericGiftURLs = []string{
	"https://images.unsplash.com/photo-1513885535751-8b9238bd345a?w=400&h=400&fit=crop",
	"https://images.unsplash.com/photo-1549465220-1a8b9238cd48?w=400&h=400&fit=crop",
	"https://images.unsplash.com/photo-1512909006721-3d6018887383?w=400&h=400&fit=crop",
	"https://images.unsplash.com/photo-1607344645866-009c320b63e0?w=400&h=400&fit=crop",
	"https://images.unsplash.com/photo-1577375729152-4c8b5fcda381?w=400&h=400&fit=crop",
}

// synonyms map query tokens onto curated categories that would otherwise not
// match by substring.
var synonyms = map[string]string{
	"zen":        "wellness",
	"relaxation": "wellness",
	"meditation": "wellness",
	"wireless":   "headphones",
	"earpods":    "headphones",
	"mug":        "coffee",
	"tumbler":    "coffee",
	"read":       "book",
	"writer":     "book",
	"succulents": "plant",
	"flowers":    "plant",
	"cocoa":      "chocolate",
	"gold":       "jewelry",
	"silver":     "jewelry",
	"scent":      "perfume",
	"sound":      "speaker",
	"music":      "speaker",
	"paint":      "art",
	"cook":       "kitchen",
	"bake":       "kitchen",
	"trip":       "travel",
	"adventure":  "travel",
	"toy":        "game",
	"warm":       "scarf",
	"winter":     "scarf",
}

// CuratedAdapter matches the query against a fixed category table and serves
// hand-picked photo URLs. It is fully offline and deterministic, the last
// tier before synthetic placeholders.
type CuratedAdapter struct{}

func (CuratedAdapter) Name() string { return "curated" }

func (CuratedAdapter) Fetch(_ context.Context, query string, count int) ([]Record, error) {
	entry := matchCurated(query)

	var urls []string
	category := "gift"
	if entry != nil {
		urls = entry.urls
		category = entry.category
	} else {
		urls = genericGiftURLs
	}

	n := count
	if n > len(urls) {
		n = len(urls)
	}
	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, Record{
			URL:          urls[i],
			ThumbnailURL: thumbVariant(urls[i]),
			Title:        category,
			Width:        400,
			Height:       400,
			Source:       SourceCurated,
		})
	}
	return records, nil
}

// matchCurated resolves a query to a curated entry in three passes of
// decreasing precision: exact substring match on category or keyword, token
// overlap with keywords, then the synonym table. Nil means no match.
func matchCurated(query string) *curatedEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	for i := range curatedEntries {
		e := &curatedEntries[i]
		if strings.Contains(q, e.category) {
			return e
		}
		for _, kw := range e.keywords {
			if strings.Contains(q, kw) {
				return e
			}
		}
	}

	tokens := strings.Fields(q)
	for i := range curatedEntries {
		e := &curatedEntries[i]
		for _, kw := range e.keywords {
			for _, tok := range tokens {
				if tok == kw {
					return e
				}
			}
		}
	}

	for _, tok := range tokens {
		if category, ok := synonyms[tok]; ok {
			for i := range curatedEntries {
				if curatedEntries[i].category == category {
					return &curatedEntries[i]
				}
			}
		}
	}
	return nil
}

func thumbVariant(u string) string {
	return strings.ReplaceAll(u, "w=400&h=400", "w=200&h=200")
}
