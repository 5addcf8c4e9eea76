package clips

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		content string
		mime    string
		want    ContentType
	}{
		{name: "https url", content: "https://example.com/page", want: TypeURL},
		{name: "http url", content: "http://example.com", want: TypeURL},
		{name: "url not at start", content: "see https://example.com", want: TypeText},
		{name: "url wins over code", content: "https://x.dev/import Foo", want: TypeURL},
		{name: "const", content: "const x = 1", want: TypeCode},
		{name: "function keyword", content: "myfunction()", want: TypeCode},
		{name: "python def", content: "def main():", want: TypeCode},
		{name: "sql", content: "SELECT * FROM t", want: TypeCode},
		{name: "lowercase sql is prose", content: "select a winner", want: TypeText},
		{name: "code wins over html", content: "<script>const a = 1</script>", want: TypeCode},
		{name: "html", content: "<div>hi</div>", want: TypeHTML},
		{name: "only one bracket", content: "a < b", want: TypeText},
		{name: "prose", content: "just some prose", want: TypeText},
		{name: "image mime", content: "binary-ish", mime: "image/png", want: TypeImage},
		{name: "text mime", content: "binary-ish", mime: "text/plain", want: TypeText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.content, tc.mime); got != tc.want {
				t.Fatalf("Classify(%q, %q) = %q, want %q", tc.content, tc.mime, got, tc.want)
			}
		})
	}
}

func TestContentType_Label(t *testing.T) {
	want := map[ContentType]string{
		TypeText:  "Text",
		TypeCode:  "Code",
		TypeURL:   "Links",
		TypeImage: "Images",
		TypeHTML:  "HTML",
		"other":   "other",
	}
	for ct, label := range want {
		if got := ct.Label(); got != label {
			t.Errorf("%q.Label() = %q, want %q", ct, got, label)
		}
	}
}
