package markdown

import (
	"net/url"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/dgallion1/chatmd/internal/dom"
)

// fragment parses s and returns the first element inside <body>.
func fragment(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader("<html><body>" + s + "</body></html>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	body := dom.FindBody(doc)
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	t.Fatalf("no element in %q", s)
	return nil
}

func convert(t *testing.T, s string) string {
	t.Helper()
	return New(Options{}).Convert(fragment(t, s), nil)
}

func TestConvert_Elements(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraph collapses whitespace", "<p>  Hello \n\t world  </p>", "Hello world\n\n"},
		{"empty paragraph", "<p>   </p>", ""},
		{"heading", "<h2> Title <em>x</em></h2>", "\n## Title *x*\n\n"},
		{"heading level 6", "<h6>deep</h6>", "\n###### deep\n\n"},
		{"strong and emphasis", "<p><strong>bold</strong> and <i>it</i></p>", "**bold** and *it*\n\n"},
		{"line break", "<p>a<br>b</p>", "a\nb\n\n"},
		{"rule", "<hr>", "\n---\n\n"},
		{"inline code", "<p>use <code> x := 1 </code></p>", "use `x := 1`\n\n"},
		{"inline code with backtick", "<code>a`b</code>", "``a`b``"},
		{"plain pre", "<pre>plain\n</pre>", "\n```\nplain\n```\n\n"},
		{"tagged pre", `<pre><code class="hljs language-python">print(1)
</code></pre>`, "\n```python\nprint(1)\n```\n\n"},
		{"link", `<a href="https://e.com/a b">x</a>`, "[x](<https://e.com/a%20b>)"},
		{"link without text", `<a href="https://e.com"></a>`, "[https://e.com](<https://e.com>)"},
		{"link without href", `<a> text </a>`, "text"},
		{"blockquote", "<blockquote><p>one</p><p>two</p></blockquote>", "> one\n>\n> two\n\n"},
		{"block container", "<div>hello <span>world</span></div>", "hello world\n\n"},
		{"inline container", "<span>x</span>", "x"},
		{"empty block container", "<div> </div>", " "},
		{"ignored tags", "<div><button>Copy</button><svg><use></use></svg><script>x()</script>kept</div>", "kept\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convert(t, tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestConvert_CodeUnderPre(t *testing.T) {
	pre := fragment(t, "<pre><code>  a  b\n</code></pre>")
	code := dom.Find(pre, dom.Tag("code"))
	if got := New(Options{}).Convert(code, nil); got != "  a  b\n" {
		t.Errorf("expected raw text, got %q", got)
	}
}

func TestConvert_PreformattedText(t *testing.T) {
	p := fragment(t, "<p>a   b</p>")
	got := New(Options{}).ConvertNode(p.FirstChild, Context{InPreformatted: true}, nil)
	if got != "a   b" {
		t.Errorf("expected verbatim text, got %q", got)
	}
}

const inlineKatex = `<span class="katex"><span class="katex-mathml"><math><semantics><mrow><msup><mi>x</mi><mn>2</mn></msup></mrow><annotation encoding="application/x-tex">x^2</annotation></semantics></math></span><span class="katex-html" aria-hidden="true">x2</span></span>`

func TestConvert_Math(t *testing.T) {
	if got := convert(t, "<p>where "+inlineKatex+" holds</p>"); got != "where $x^2$ holds\n\n" {
		t.Errorf("inline math: got %q", got)
	}
	display := `<span class="katex-display">` + inlineKatex + `</span>`
	if got := convert(t, display); got != "\n$$\nx^2\n$$\n\n" {
		t.Errorf("display math: got %q", got)
	}
	alt := `<span class="katex"><math alttext="\alpha"><mi>α</mi></math></span>`
	if got := convert(t, alt); got != `$\alpha$` {
		t.Errorf("alttext math: got %q", got)
	}
	if got := convert(t, `<span class="katex">plain</span>`); got != "plain" {
		t.Errorf("math without source falls back to its content, got %q", got)
	}
}

func TestConvert_ImagesDownloaded(t *testing.T) {
	c := New(Options{DownloadImages: true, ImageFolder: "My Chat-assets"})
	var images Images
	div := fragment(t, `<div><img src="https://x.test/a.png" alt=" pic "><img src="https://x.test/b"></div>`)
	got := c.Convert(div, &images)
	want := "![pic](<My%20Chat-assets/image-001>)![](<My%20Chat-assets/image-002>)\n\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	refs := images.Refs()
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[0].Key != "image-001" || refs[0].Ordinal != 1 || refs[0].SourceURL != "https://x.test/a.png" || refs[0].Alt != "pic" {
		t.Errorf("unexpected first ref: %+v", refs[0])
	}
	if refs[1].Key != "image-002" || refs[1].Ordinal != 2 {
		t.Errorf("unexpected second ref: %+v", refs[1])
	}
}

func TestConvert_ImagesLinked(t *testing.T) {
	base, _ := url.Parse("https://chat.example.com/c/123")
	c := New(Options{BaseURL: base})
	got := c.Convert(fragment(t, `<img src="/files/a.png" alt="x">`), nil)
	if got != "![x](<https://chat.example.com/files/a.png>)" {
		t.Errorf("got %q", got)
	}
}

func TestIsContentImage(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`<img src="https://x.test/a.png">`, true},
		{`<img src="">`, false},
		{`<img alt="no src">`, false},
		{`<img src="data:image/png;base64,AAAA">`, false},
		{`<img class="avatar-icon" src="https://x.test/a.png">`, false},
		{`<img width="24" height="24" src="https://x.test/a.png">`, false},
		{`<img width="64" height="64" src="https://x.test/a.png">`, false},
		{`<img width="65" height="24" src="https://x.test/a.png">`, true},
		{`<img width="24" src="https://x.test/a.png">`, true},
		{`<img alt="Uploaded image" src="https://files.test/backend-api/estuary/content?id=1">`, true},
	}
	for _, tt := range tests {
		if got := IsContentImage(fragment(t, tt.in)); got != tt.want {
			t.Errorf("IsContentImage(%s) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestImageKey(t *testing.T) {
	if ImageKey(1) != "image-001" || ImageKey(42) != "image-042" || ImageKey(1000) != "image-1000" {
		t.Error("unexpected image key format")
	}
}
