package source

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mmlkg/mizgra/pkg/graph"
)

// Node ids are readable and kind-aware. ESX constructs and CSV endpoints
// share one scheme so both sources collapse onto the same node:
//
//	article         <article>
//	construct       <article>N<xmlid>     (no xmlid: <article>N_<ordinal>)
//	metadata        <stem>, <stem>N<line>
//	rdf-resource    rdf<md5-hex(value)>

// ArticleID returns the node id of an article.
func ArticleID(article string) string { return article }

// ConstructID returns the node id of the element with the given xmlid.
func ConstructID(article, xmlid string) string { return article + "N" + xmlid }

// AnonymousConstructID returns the node id of an element without an xmlid,
// keyed by its document-order position within the article.
func AnonymousConstructID(article string, ordinal int) string {
	return article + "N_" + strconv.Itoa(ordinal)
}

// MetadataID returns the node id of a metadata document.
func MetadataID(stem string) string { return stem }

// MetadataEntryID returns the node id of a metadata entry on the given line.
func MetadataEntryID(stem string, line int) string { return stem + "N" + strconv.Itoa(line) }

// RDFResourceID returns the node id of an RDF object value.
func RDFResourceID(value string) string {
	sum := md5.Sum([]byte(value))
	return "rdf" + hex.EncodeToString(sum[:])
}

// uuidBase prefixes node ids before they are hashed into UUIDv5 values.
const uuidBase = "http://mizar.uwb.edu.pl/.well-known/mmlkg/"

// NodeUUID returns the stable UUIDv5 (URL namespace) of a node id.
func NodeUUID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(uuidBase+id)).String()
}

// ArticleFromMMLID extracts the article name from an MML identifier such as
// "TARSKI:def 1".
func ArticleFromMMLID(mmlid string) string {
	article, _, _ := strings.Cut(mmlid, ":")
	return strings.ToLower(article)
}

// UsageRef names every element matching target whose attr equals value.
func UsageRef(target, attr, value string) string {
	return graph.Ref("usage", target+"|"+attr+"|"+value)
}

// BroaderRef names the structure pattern registered by broader rule rule
// under value.
func BroaderRef(rule int, value string) string {
	return graph.Ref("broader", strconv.Itoa(rule)+"|"+value)
}

// NotionRef names every Notion-Name element whose normalized inscription is key.
func NotionRef(key string) string {
	return graph.Ref("notion", key)
}
