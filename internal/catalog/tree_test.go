package catalog

import "testing"

func TestTreeFormatterPlain(t *testing.T) {
	c, err := LoadFile("testdata/small.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := NewTreeFormatter(false).Format(c)
	want := `Blue
├── 1st Armoured Division (1)
│   └── 1st Brigade (2)
└── 5th Infantry Brigade (3)
Red
├── 20th Guards Army (4)
└── Red Reserve
    └── 10th Tank Division (5)
Blue [Blue-air]
└── MiG-21PFM (2x S-13) (7)
`
	if got != want {
		t.Fatalf("unexpected tree:\n%s\nwant:\n%s", got, want)
	}
}
