package sqlinline

const QUpsertSceneMatch = `--sql 7a1085ec-2f69-45fe-9cb0-c15451bdf4f1
insert into scene_matches (storyboard_id, scene_id, asset_id, local_path, source, confidence, needs_review)
values ($1, $2, $3, $4, $5, $6, $7)
on conflict (storyboard_id, scene_id) do update
set asset_id = excluded.asset_id,
    local_path = excluded.local_path,
    source = excluded.source,
    confidence = excluded.confidence,
    needs_review = excluded.needs_review,
    created_at = now();
`

const QListSceneMatches = `--sql b05ee375-ef70-4559-adbe-66cd8e035e2b
select scene_id, asset_id, local_path, source, confidence, needs_review
from scene_matches
where storyboard_id = $1
order by created_at asc;
`
