package sqlinline

const QInsertGeneration = `--sql a932ecfd-532d-48c4-a871-c97b3455cc60
insert into generation_history (id, user_id, text_input, template, overlay_text, text_position, overlay_style, image_url, credits_charged, created_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::text, $4::text, $5::text, coalesce($6::jsonb, '{}'::jsonb), $7::text, $8::int, now())
returning id;
`

const QListGenerationHistory = `--sql 8a269a37-4f0f-474f-8c53-36b5ecfaac8a
select id, text_input, template, overlay_text, text_position, overlay_style, image_url, credits_charged, created_at
from generation_history
where user_id = $1::uuid
order by created_at desc
limit $2::int;
`

// QDeleteGeneration scopes deletion to the owner; a foreign id matches nothing.
const QDeleteGeneration = `--sql c2e038c2-6ac7-4375-9990-cdc80a7d117c
delete from generation_history
where id = $1::uuid
  and user_id = $2::uuid
returning id;
`
