package patentscope

import "patsearch-backend/lib/textutil"

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = textutil.NormalizeSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Normalize trims and collapses whitespace on every string field and
// drops list entries that are empty after trimming. Records are value
// types, so the input slice is left alone.
func Normalize(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.ID = textutil.NormalizeSpace(r.ID)
		r.PublicationNumber = textutil.NormalizeSpace(r.PublicationNumber)
		r.Title = textutil.NormalizeSpace(r.Title)
		r.Abstract = textutil.NormalizeSpace(r.Abstract)
		r.PublicationDate = textutil.NormalizeSpace(r.PublicationDate)
		r.Applicants = normalizeList(r.Applicants)
		r.Inventors = normalizeList(r.Inventors)
		r.IPCCodes = normalizeList(r.IPCCodes)
		out[i] = r
	}
	return out
}

// Dedupe drops records whose Key was already seen, keeping the first
// occurrence. The same patent shows up once per search term when a
// molecule expands to several term variants, and the earlier term is
// the more specific one, so first-seen values win.
func Dedupe(records []Record) []Record {
	seen := make(map[string]bool, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		key := r.Key()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
