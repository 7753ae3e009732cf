package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/floorhouse/site/internal/domain"
	pfirestore "github.com/floorhouse/site/internal/platform/firestore"
)

const (
	collectionsPath = "catalog_collections"
	productsPath    = "products"
	treatmentsPath  = "catalog_treatments"
	positionField   = "position"
)

// FirestoreSource reads the catalog from Firestore. Each collection is a
// document under catalog_collections holding the metadata, with its products
// in a `products` subcollection. Records are ordered by their `position` field.
type FirestoreSource struct {
	client *firestore.Client
}

// NewFirestoreSource wraps an existing client.
func NewFirestoreSource(client *firestore.Client) *FirestoreSource {
	return &FirestoreSource{client: client}
}

// Collection reads the metadata document of collection and its products
// subcollection, sorted by their stored position.
func (s *FirestoreSource) Collection(ctx context.Context, collection domain.CollectionType) (ProductContainer, error) {
	doc := s.client.Collection(collectionsPath).Doc(string(collection))

	var container ProductContainer
	meta, err := s.metadata(ctx, doc)
	if err != nil {
		return ProductContainer{}, err
	}
	container.Metadata = meta

	iter := doc.Collection(productsPath).OrderBy(positionField, firestore.Asc).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return ProductContainer{}, pfirestore.WrapError("catalog.products", err)
		}
		var product domain.Product
		if err := decodeSnapshot(snap, &product); err != nil {
			return ProductContainer{}, err
		}
		container.Products = append(container.Products, product)
	}
	return container, nil
}

// Treatments reads every treatment document, sorted by stored position.
func (s *FirestoreSource) Treatments(ctx context.Context) (TreatmentContainer, error) {
	var container TreatmentContainer
	iter := s.client.Collection(treatmentsPath).OrderBy(positionField, firestore.Asc).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return TreatmentContainer{}, pfirestore.WrapError("catalog.treatments", err)
		}
		var treatment domain.Treatment
		if err := decodeSnapshot(snap, &treatment); err != nil {
			return TreatmentContainer{}, err
		}
		container.Treatments = append(container.Treatments, treatment)
	}
	container.Metadata.TotalCount = len(container.Treatments)
	return container, nil
}

func (s *FirestoreSource) metadata(ctx context.Context, doc *firestore.DocumentRef) (Metadata, error) {
	snap, err := doc.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Metadata{}, nil
		}
		return Metadata{}, pfirestore.WrapError("catalog.metadata", err)
	}
	var raw struct {
		TotalCount int       `firestore:"totalCount"`
		LastSorted time.Time `firestore:"lastSorted"`
	}
	if err := snap.DataTo(&raw); err != nil {
		return Metadata{}, fmt.Errorf("catalog: decode metadata %s: %w", doc.ID, err)
	}
	meta := Metadata{TotalCount: raw.TotalCount}
	if !raw.LastSorted.IsZero() {
		meta.LastSorted = &raw.LastSorted
	}
	return meta, nil
}

// Publish writes a store's contents to Firestore in the layout read by
// FirestoreSource. Records with the same IDs are overwritten and records the
// store no longer holds are deleted, so a later Load sees exactly the store.
func (s *FirestoreSource) Publish(ctx context.Context, store *Store) error {
	if store == nil {
		return errors.New("catalog: publish requires a store")
	}
	collections := domain.Collections()
	productsRefs := make(map[domain.CollectionType]*firestore.CollectionRef, len(collections))
	var stale []*firestore.DocumentRef
	for _, collection := range collections {
		ref := s.client.Collection(collectionsPath).Doc(string(collection)).Collection(productsPath)
		productsRefs[collection] = ref
		keep := make([]string, 0, store.ProductCount(collection))
		for _, p := range store.Products(collection) {
			keep = append(keep, p.SKU)
		}
		refs, err := staleDocuments(ctx, ref, keep)
		if err != nil {
			return err
		}
		stale = append(stale, refs...)
	}
	treatmentsRef := s.client.Collection(treatmentsPath)
	keep := make([]string, 0, len(store.Treatments()))
	for _, t := range store.Treatments() {
		keep = append(keep, t.Slug)
	}
	refs, err := staleDocuments(ctx, treatmentsRef, keep)
	if err != nil {
		return err
	}
	stale = append(stale, refs...)

	bw := s.client.BulkWriter(ctx)
	jobs, err := queuePublish(bw, store, productsRefs, treatmentsRef, stale)
	bw.End()
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return pfirestore.WrapError("catalog.publish", err)
		}
	}
	return nil
}

func queuePublish(bw *firestore.BulkWriter, store *Store, productsRefs map[domain.CollectionType]*firestore.CollectionRef, treatmentsRef *firestore.CollectionRef, stale []*firestore.DocumentRef) ([]*firestore.BulkWriterJob, error) {
	var jobs []*firestore.BulkWriterJob
	for _, ref := range stale {
		job, err := bw.Delete(ref)
		if err != nil {
			return nil, fmt.Errorf("catalog: queue delete %s: %w", ref.Path, err)
		}
		jobs = append(jobs, job)
	}
	for _, collection := range domain.Collections() {
		products := store.Products(collection)
		ref := productsRefs[collection]
		meta := map[string]any{"totalCount": len(products), "lastSorted": time.Now().UTC()}
		job, err := bw.Set(ref.Parent, meta)
		if err != nil {
			return nil, fmt.Errorf("catalog: queue metadata %s: %w", collection, err)
		}
		jobs = append(jobs, job)
		for i, p := range products {
			data, err := encodeRecord(p, i)
			if err != nil {
				return nil, err
			}
			job, err := bw.Set(ref.Doc(p.SKU), data)
			if err != nil {
				return nil, fmt.Errorf("catalog: queue product %s: %w", p.SKU, err)
			}
			jobs = append(jobs, job)
		}
	}
	for i, t := range store.Treatments() {
		data, err := encodeRecord(t, i)
		if err != nil {
			return nil, err
		}
		job, err := bw.Set(treatmentsRef.Doc(t.Slug), data)
		if err != nil {
			return nil, fmt.Errorf("catalog: queue treatment %s: %w", t.Slug, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// staleDocuments lists the documents under ref whose IDs are not in keep.
func staleDocuments(ctx context.Context, ref *firestore.CollectionRef, keep []string) ([]*firestore.DocumentRef, error) {
	iter := ref.DocumentRefs(ctx)
	var existing []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("catalog.list", err)
		}
		existing = append(existing, doc)
	}
	ids := make([]string, len(existing))
	for i, doc := range existing {
		ids[i] = doc.ID
	}
	var out []*firestore.DocumentRef
	for _, i := range staleIndexes(ids, keep) {
		out = append(out, existing[i])
	}
	return out, nil
}

// staleIndexes returns the positions in existing whose IDs are not in keep.
func staleIndexes(existing, keep []string) []int {
	want := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		want[id] = struct{}{}
	}
	var out []int
	for i, id := range existing {
		if _, ok := want[id]; !ok {
			out = append(out, i)
		}
	}
	return out
}

// Records are stored with the same field names as the JSON data files so
// both sources decode through one set of struct tags.
func decodeSnapshot(snap *firestore.DocumentSnapshot, dst any) error {
	data := snap.Data()
	delete(data, positionField)
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("catalog: encode document %s: %w", snap.Ref.ID, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("catalog: decode document %s: %w", snap.Ref.ID, err)
	}
	return nil
}

func encodeRecord(record any, position int) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("catalog: encode record: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("catalog: encode record: %w", err)
	}
	data[positionField] = position
	return data, nil
}
